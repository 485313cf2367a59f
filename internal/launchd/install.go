package launchd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/user/safeproxy/internal/procutil"
)

// Runner runs launchctl.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// Launchctl runs /bin/launchctl with a timeout.
type Launchctl struct {
	Timeout time.Duration
}

// Run executes launchctl with args.
func (l Launchctl) Run(ctx context.Context, args ...string) ([]byte, error) {
	res, err := procutil.Run(ctx, l.Timeout, "/bin/launchctl", args...)
	return res.Output, err
}

// Installer writes, loads, and removes the agent plist.
type Installer struct {
	PlistPath string
	Runner    Runner
}

// Install writes the plist and loads it. An existing agent is unloaded first.
func (i *Installer) Install(ctx context.Context, agent Agent) error {
	data, err := agent.Render()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(i.PlistPath), 0755); err != nil {
		return fmt.Errorf("failed to create LaunchAgents directory: %w", err)
	}
	if i.Installed() {
		// Ignore errors: the agent may exist on disk but not be loaded.
		_, _ = i.Runner.Run(ctx, "unload", i.PlistPath)
	}
	if err := os.WriteFile(i.PlistPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write plist: %w", err)
	}
	if _, err := i.Runner.Run(ctx, "load", i.PlistPath); err != nil {
		return fmt.Errorf("launchctl load: %w", err)
	}
	return nil
}

// Uninstall unloads the agent and removes its plist. Missing agents are
// not an error.
func (i *Installer) Uninstall(ctx context.Context) error {
	if !i.Installed() {
		return nil
	}
	if _, err := i.Runner.Run(ctx, "unload", i.PlistPath); err != nil {
		return fmt.Errorf("launchctl unload: %w", err)
	}
	if err := os.Remove(i.PlistPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove plist: %w", err)
	}
	return nil
}

// Installed reports whether the plist exists.
func (i *Installer) Installed() bool {
	_, err := os.Stat(i.PlistPath)
	return err == nil
}
