//go:build darwin

package ui

import (
	"os/exec"

	"github.com/user/safeproxy/internal/logger"
)

// openFile opens path with the default application.
func openFile(log *logger.Logger, path string) {
	if err := exec.Command("open", "-t", path).Start(); err != nil {
		log.Error("failed to open %s: %v", path, err)
	}
}
