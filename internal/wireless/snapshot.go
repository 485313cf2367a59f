// Package wireless samples the identity and link state of the currently
// associated wireless network.
package wireless

import (
	"fmt"
	"time"
)

// Snapshot is the wireless state captured at one instant.
// When LinkUp is false, SSID and BSSID are empty.
type Snapshot struct {
	LinkUp     bool
	SSID       string
	BSSID      string
	CapturedAt time.Time
}

// Down returns a link-down snapshot captured at t.
func Down(t time.Time) Snapshot {
	return Snapshot{CapturedAt: t}
}

// Associated returns a link-up snapshot for the given identifiers.
func Associated(ssid, bssid string, t time.Time) Snapshot {
	return Snapshot{LinkUp: true, SSID: ssid, BSSID: bssid, CapturedAt: t}
}

func (s Snapshot) String() string {
	if !s.LinkUp {
		return "link down"
	}
	return fmt.Sprintf("ssid=%q bssid=%q", s.SSID, s.BSSID)
}
