package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("invalid config version")
	}
	if err := c.SSH.Validate(); err != nil {
		return fmt.Errorf("ssh config: %w", err)
	}
	if err := c.Trust.Validate(); err != nil {
		return fmt.Errorf("trust config: %w", err)
	}
	if err := c.Proxy.Validate(); err != nil {
		return fmt.Errorf("proxy config: %w", err)
	}
	if err := c.Monitor.Validate(); err != nil {
		return fmt.Errorf("monitor config: %w", err)
	}
	return nil
}

// Validate validates SSH configuration.
func (s *SSH) Validate() error {
	if strings.TrimSpace(s.Host) == "" {
		return fmt.Errorf("host is required")
	}
	if strings.ContainsAny(s.Host, " \t") {
		return fmt.Errorf("host must not contain whitespace: %q", s.Host)
	}
	if s.SOCKSPort < 1 || s.SOCKSPort > 65535 {
		return fmt.Errorf("socks_port must be between 1 and 65535")
	}
	return nil
}

// Validate validates the trust allow-list.
func (t *Trust) Validate() error {
	if t.TrustedLocation == "" {
		return fmt.Errorf("trusted_location is required")
	}
	if t.UntrustedLocation != "" && t.UntrustedLocation == t.TrustedLocation {
		return fmt.Errorf("untrusted_location must differ from trusted_location")
	}
	for i, name := range t.TrustedNames {
		if name == "" {
			return fmt.Errorf("trusted_names[%d] is empty", i)
		}
	}
	return nil
}

// Validate validates proxy configuration.
func (p *Proxy) Validate() error {
	if p.Service == "" {
		return fmt.Errorf("service is required")
	}
	if p.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// Validate validates monitor configuration.
func (m *Monitor) Validate() error {
	if m.PollInterval.Std() < time.Second {
		return fmt.Errorf("poll_interval must be at least 1s")
	}
	if m.CommandTimeout.Std() <= 0 {
		return fmt.Errorf("command_timeout must be positive")
	}
	if m.CommandTimeout.Std() >= m.PollInterval.Std() {
		return fmt.Errorf("command_timeout must be shorter than poll_interval")
	}
	if m.Debounce.Std() < 0 {
		return fmt.Errorf("debounce cannot be negative")
	}
	return nil
}

// AddTrusted appends names not already present. It returns how many were added.
func (t *Trust) AddTrusted(names ...string) int {
	added := 0
	for _, n := range names {
		if n == "" || t.isTrusted(n) {
			continue
		}
		t.TrustedNames = append(t.TrustedNames, n)
		added++
	}
	return added
}

// RemoveTrusted drops the given names. It returns how many were removed.
func (t *Trust) RemoveTrusted(names ...string) int {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.TrustedNames[:0]
	for _, n := range t.TrustedNames {
		if !drop[n] {
			kept = append(kept, n)
		}
	}
	removed := len(t.TrustedNames) - len(kept)
	t.TrustedNames = kept
	return removed
}

func (t *Trust) isTrusted(name string) bool {
	for _, n := range t.TrustedNames {
		if n == name {
			return true
		}
	}
	return false
}
