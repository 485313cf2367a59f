//go:build !windows

// Package tunnel manages the ssh -D process that backs the SOCKS proxy.
// It shells out to the user's already-authenticated ssh client.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/user/safeproxy/internal/procutil"
)

// SSHTunnel runs `ssh -N -D port host` in the background and tracks it
// through a pidfile so later runs can find it.
type SSHTunnel struct {
	SSHPath   string
	Host      string
	Port      int
	ExtraArgs []string
	PIDFile   string

	// StartWait is how long Up watches the new process for an early exit.
	StartWait time.Duration
}

// New creates a tunnel to host forwarding SOCKS on localhost:port.
func New(host string, port int, extra []string, pidFile string) *SSHTunnel {
	return &SSHTunnel{
		SSHPath:   "ssh",
		Host:      host,
		Port:      port,
		ExtraArgs: extra,
		PIDFile:   pidFile,
		StartWait: time.Second,
	}
}

// Args returns the ssh arguments used to start the tunnel.
func (t *SSHTunnel) Args() []string {
	args := []string{
		"-N",
		"-D", strconv.Itoa(t.Port),
		"-o", "BatchMode=yes",
		"-o", "ExitOnForwardFailure=yes",
		"-o", "ServerAliveInterval=30",
	}
	args = append(args, t.ExtraArgs...)
	return append(args, t.Host)
}

// Up starts the tunnel unless it is already running.
func (t *SSHTunnel) Up(ctx context.Context) error {
	if t.Running() {
		return nil
	}

	cmd := procutil.Detach(exec.Command(t.SSHPath, t.Args()...))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ssh: %w", err)
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	select {
	case err := <-exited:
		if err == nil {
			err = errors.New("exited immediately")
		}
		return fmt.Errorf("ssh tunnel to %s: %w", t.Host, err)
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		return ctx.Err()
	case <-time.After(t.StartWait):
	}

	if err := t.writePID(cmd.Process.Pid); err != nil {
		_ = cmd.Process.Kill()
		return err
	}
	return nil
}

// Check runs `ssh host true` non-interactively to confirm the host is
// reachable and the user's credentials work without a prompt.
func (t *SSHTunnel) Check(ctx context.Context, timeout time.Duration) error {
	args := append([]string{"-o", "BatchMode=yes"}, t.ExtraArgs...)
	args = append(args, t.Host, "true")
	if _, err := procutil.Run(ctx, timeout, t.SSHPath, args...); err != nil {
		return fmt.Errorf("ssh %s: %w", t.Host, err)
	}
	return nil
}

// Down stops the tunnel if it is running.
func (t *SSHTunnel) Down(context.Context) error {
	pid, err := t.readPID()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := unix.Kill(pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("failed to stop ssh (pid %d): %w", pid, err)
	}
	if err := os.Remove(t.PIDFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove pidfile: %w", err)
	}
	return nil
}

// Running reports whether the recorded ssh process is alive.
func (t *SSHTunnel) Running() bool {
	pid, err := t.readPID()
	if err != nil {
		return false
	}
	return alive(pid)
}

// PID returns the recorded process id, or 0.
func (t *SSHTunnel) PID() int {
	pid, err := t.readPID()
	if err != nil {
		return 0
	}
	return pid
}

func alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func (t *SSHTunnel) readPID() (int, error) {
	data, err := os.ReadFile(t.PIDFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pidfile %s", t.PIDFile)
	}
	return pid, nil
}

func (t *SSHTunnel) writePID(pid int) error {
	if err := os.MkdirAll(filepath.Dir(t.PIDFile), 0755); err != nil {
		return fmt.Errorf("failed to create pidfile directory: %w", err)
	}
	if err := os.WriteFile(t.PIDFile, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write pidfile: %w", err)
	}
	return nil
}
