// Package proxy drives the SOCKS proxy and network location settings
// through the OS network-configuration tool.
package proxy

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/safeproxy/internal/procutil"
)

// ProxyConfigurator runs the network-configuration tool with args.
type ProxyConfigurator interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// errToolReported marks output where networksetup reported an error but
// exited zero, which it does for unknown services.
var errToolReported = errors.New("networksetup reported an error")

// Driver enables and disables the SOCKS proxy for a network service.
type Driver struct {
	tool ProxyConfigurator
}

// NewDriver creates a driver backed by tool.
func NewDriver(tool ProxyConfigurator) *Driver {
	return &Driver{tool: tool}
}

// SetEnabled installs host:port as the service's SOCKS proxy and turns it
// on, or turns it off. Repeating a call re-issues the commands.
func (d *Driver) SetEnabled(ctx context.Context, enabled bool, service, host string, port int) error {
	if !enabled {
		_, err := d.run(ctx, "disable", service, "-setsocksfirewallproxystate", service, "off")
		return err
	}
	if _, err := d.run(ctx, "enable", service, "-setsocksfirewallproxy", service, host, strconv.Itoa(port)); err != nil {
		return err
	}
	_, err := d.run(ctx, "enable", service, "-setsocksfirewallproxystate", service, "on")
	return err
}

// IsEnabled queries the OS for the service's SOCKS proxy state.
func (d *Driver) IsEnabled(ctx context.Context, service string) (bool, error) {
	out, err := d.run(ctx, "query", service, "-getsocksfirewallproxy", service)
	if err != nil {
		return false, err
	}
	enabled, ok := parseEnabled(out)
	if !ok {
		return false, &ProxyError{Op: "query", Service: service, ExitCode: -1,
			Output: string(out), Err: fmt.Errorf("no Enabled field in output")}
	}
	return enabled, nil
}

// SwitchLocation activates the named network location.
func (d *Driver) SwitchLocation(ctx context.Context, name string) error {
	_, err := d.run(ctx, "switch location", name, "-switchtolocation", name)
	return err
}

// CurrentLocation returns the active network location name.
func (d *Driver) CurrentLocation(ctx context.Context) (string, error) {
	out, err := d.run(ctx, "get location", "", "-getcurrentlocation")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ListServices returns the enabled network services, in service order.
func (d *Driver) ListServices(ctx context.Context) ([]string, error) {
	out, err := d.run(ctx, "list services", "", "-listallnetworkservices")
	if err != nil {
		return nil, err
	}

	var services []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "An asterisk") {
			continue
		}
		// Disabled services are prefixed with "*"
		if !strings.HasPrefix(line, "*") {
			services = append(services, line)
		}
	}
	return services, nil
}

func (d *Driver) run(ctx context.Context, op, service string, args ...string) ([]byte, error) {
	out, err := d.tool.Run(ctx, args...)
	if err != nil {
		return out, &ProxyError{Op: op, Service: service, ExitCode: procutil.ExitCode(err),
			Output: string(bytes.TrimSpace(out)), Err: err}
	}
	if reportsError(out) {
		return out, &ProxyError{Op: op, Service: service, ExitCode: 0,
			Output: string(bytes.TrimSpace(out)), Err: fmt.Errorf("%w: %s", errToolReported, bytes.TrimSpace(out))}
	}
	return out, nil
}

func reportsError(out []byte) bool {
	return bytes.Contains(out, []byte("** Error")) ||
		bytes.Contains(out, []byte("is not a recognized network service"))
}

func parseEnabled(out []byte) (enabled, ok bool) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found || strings.TrimSpace(key) != "Enabled" {
			continue
		}
		return strings.EqualFold(strings.TrimSpace(value), "Yes"), true
	}
	return false, false
}
