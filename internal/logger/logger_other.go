//go:build !darwin

package logger

import (
	"os"
	"path/filepath"
)

// DefaultPath returns the log path under the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "safeproxy.log"
	}
	return filepath.Join(home, ".safeproxy.log")
}
