// Package config handles safeproxy configuration loading, saving, and validation.
package config

import (
	"time"

	"github.com/user/safeproxy/internal/trust"
)

// Config represents the main configuration structure.
type Config struct {
	Version int     `yaml:"version"`
	SSH     SSH     `yaml:"ssh"`
	Trust   Trust   `yaml:"trust"`
	Proxy   Proxy   `yaml:"proxy"`
	Monitor Monitor `yaml:"monitor"`
}

// SSH tunnel configuration.
type SSH struct {
	Host      string   `yaml:"host"` // server name or user@server
	SOCKSPort int      `yaml:"socks_port"`
	ExtraArgs []string `yaml:"extra_args,omitempty"`
}

// Trust holds the trusted network allow-list and location names.
type Trust struct {
	TrustedLocation   string   `yaml:"trusted_location"`
	UntrustedLocation string   `yaml:"untrusted_location,omitempty"`
	TrustedNames      []string `yaml:"trusted_names"`
}

// Proxy identifies where the SOCKS proxy is installed.
type Proxy struct {
	Service string `yaml:"service"` // networksetup service name, e.g. "Wi-Fi"
	Host    string `yaml:"host"`
}

// Monitor controls the poll cadence and OS command bounds.
type Monitor struct {
	PollInterval   Duration `yaml:"poll_interval"`
	CommandTimeout Duration `yaml:"command_timeout"`
	WatchPaths     []string `yaml:"watch_paths,omitempty"`
	Debounce       Duration `yaml:"debounce"`
}

// DefaultConfig returns a default configuration. SSH host and trusted
// names have no sensible default and are left empty.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		SSH: SSH{
			SOCKSPort: 9999,
		},
		Trust: Trust{
			TrustedLocation:   "Automatic",
			UntrustedLocation: "Untrusted",
			TrustedNames:      []string{},
		},
		Proxy: Proxy{
			Service: "Wi-Fi",
			Host:    "localhost",
		},
		Monitor: Monitor{
			PollInterval:   Duration(30 * time.Second),
			CommandTimeout: Duration(5 * time.Second),
			WatchPaths:     []string{"/Library/Preferences/SystemConfiguration"},
			Debounce:       Duration(2 * time.Second),
		},
	}
}

// TrustConfig returns the classification policy for this configuration.
func (c *Config) TrustConfig() trust.Config {
	return trust.NewConfig(c.Trust.TrustedLocation, c.Trust.TrustedNames...)
}
