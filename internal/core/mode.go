package core

import (
	"fmt"

	"github.com/user/safeproxy/internal/trust"
)

// Mode is the controller's authoritative state: the last trust decision it
// acted on and whether the proxy is engaged.
type Mode struct {
	Trust        trust.Classification
	ProxyEngaged bool
}

var (
	// ModeTrusted is the stable state for a trusted network.
	ModeTrusted = Mode{Trust: trust.Trusted, ProxyEngaged: false}
	// ModeUntrusted is the stable state for an untrusted network.
	ModeUntrusted = Mode{Trust: trust.Untrusted, ProxyEngaged: true}
)

func (m Mode) String() string {
	proxy := "proxy-off"
	if m.ProxyEngaged {
		proxy = "proxy-on"
	}
	return fmt.Sprintf("%s/%s", m.Trust, proxy)
}

// stableMode returns the mode the controller drives toward for c.
func stableMode(c trust.Classification) Mode {
	if c == trust.Trusted {
		return ModeTrusted
	}
	return ModeUntrusted
}

// Direction is a manual proxy override.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// ParseDirection parses "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return Up, fmt.Errorf("invalid direction %q (want up or down)", s)
}
