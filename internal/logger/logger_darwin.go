//go:build darwin

package logger

import (
	"os"
	"path/filepath"
)

// DefaultPath returns ~/.safeproxy.log, falling back next to the executable.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".safeproxy.log")
	}

	exe, err := os.Executable()
	if err != nil {
		return "safeproxy.log"
	}
	return filepath.Join(filepath.Dir(exe), "safeproxy.log")
}
