// Package trust classifies a wireless snapshot against the configured
// allow-list of trusted networks.
package trust

import (
	"sort"

	"github.com/user/safeproxy/internal/wireless"
)

// Classification is the trust verdict for one snapshot.
type Classification int

const (
	Unknown Classification = iota
	Trusted
	Untrusted
)

func (c Classification) String() string {
	switch c {
	case Trusted:
		return "trusted"
	case Untrusted:
		return "untrusted"
	default:
		return "unknown"
	}
}

// Config is the trusted location name plus the set of trusted SSIDs and
// BSSIDs. Identifiers match exactly and case-sensitively.
type Config struct {
	TrustedLocation string
	trusted         map[string]struct{}
}

// NewConfig builds a config. An empty identifier list trusts nothing.
func NewConfig(location string, identifiers ...string) Config {
	c := Config{TrustedLocation: location, trusted: make(map[string]struct{}, len(identifiers))}
	for _, id := range identifiers {
		if id != "" {
			c.trusted[id] = struct{}{}
		}
	}
	return c
}

// Contains reports whether id is trusted.
func (c Config) Contains(id string) bool {
	if id == "" {
		return false
	}
	_, ok := c.trusted[id]
	return ok
}

// Identifiers returns the trusted identifiers in sorted order.
func (c Config) Identifiers() []string {
	ids := make([]string, 0, len(c.trusted))
	for id := range c.trusted {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of trusted identifiers.
func (c Config) Len() int {
	return len(c.trusted)
}

// Classify returns Unknown when the link is down, Trusted when either
// identifier is in the allow-list, and Untrusted otherwise.
func Classify(snap wireless.Snapshot, cfg Config) Classification {
	if !snap.LinkUp {
		return Unknown
	}
	if cfg.Contains(snap.SSID) || cfg.Contains(snap.BSSID) {
		return Trusted
	}
	return Untrusted
}
