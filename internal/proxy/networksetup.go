package proxy

import (
	"context"
	"time"

	"github.com/user/safeproxy/internal/procutil"
)

// NetworkSetupPath is the macOS network-configuration tool.
const NetworkSetupPath = "/usr/sbin/networksetup"

// NetworkSetup runs networksetup with a per-command timeout.
type NetworkSetup struct {
	Path    string
	Timeout time.Duration
}

// NewNetworkSetup returns a configurator for the system networksetup.
func NewNetworkSetup(timeout time.Duration) *NetworkSetup {
	return &NetworkSetup{Path: NetworkSetupPath, Timeout: timeout}
}

// Run executes networksetup with args.
func (n *NetworkSetup) Run(ctx context.Context, args ...string) ([]byte, error) {
	res, err := procutil.Run(ctx, n.Timeout, n.Path, args...)
	return res.Output, err
}
