//go:build darwin

package main

import (
	"os"
	"strings"
)

func init() {
	// When launched by launchd or from Finder the PATH is minimal
	// (/usr/bin:/bin:/usr/sbin:/sbin) and misses Homebrew and MacPorts,
	// where a newer ssh client is often installed.
	extraPaths := []string{
		"/opt/homebrew/bin", // Homebrew on Apple Silicon
		"/usr/local/bin",    // Homebrew on Intel
		"/opt/local/bin",    // MacPorts
		"/usr/sbin",         // networksetup
	}

	current := os.Getenv("PATH")
	parts := strings.Split(current, ":")
	existing := make(map[string]bool, len(parts))
	for _, p := range parts {
		existing[p] = true
	}

	var toAdd []string
	for _, p := range extraPaths {
		if !existing[p] {
			toAdd = append(toAdd, p)
		}
	}

	if len(toAdd) > 0 {
		os.Setenv("PATH", current+":"+strings.Join(toAdd, ":"))
	}
}
