//go:build !windows

package procutil

import (
	"os/exec"
	"syscall"
)

// Detach starts cmd in its own session so it survives the parent exiting
// (launchd reaps the agent after every run).
func Detach(cmd *exec.Cmd) *exec.Cmd {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd
}
