package core

import (
	"time"
)

// StatusPayload is a point-in-time view of the controller for the CLI
// and the tray.
type StatusPayload struct {
	Classification string    `json:"classification"`
	Mode           string    `json:"mode"`
	Settled        bool      `json:"settled"`
	ProxyEngaged   bool      `json:"proxy_engaged"`
	LinkUp         bool      `json:"link_up"`
	SSID           string    `json:"ssid,omitempty"`
	BSSID          string    `json:"bssid,omitempty"`
	SampledAt      time.Time `json:"sampled_at,omitempty"`
	LastTransition time.Time `json:"last_transition,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// StatusListener is a callback invoked after every transition or failure.
type StatusListener func(status *StatusPayload)

// SetStatusListener sets a callback that will be called on every status change.
func (c *Controller) SetStatusListener(listener StatusListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusListener = listener
}

// GetStatusPayload returns the current status.
func (c *Controller) GetStatusPayload() *StatusPayload {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &StatusPayload{
		Classification: c.classification.String(),
		Settled:        c.settled,
		ProxyEngaged:   c.mode.ProxyEngaged,
		LinkUp:         c.snapshot.LinkUp,
		SSID:           c.snapshot.SSID,
		BSSID:          c.snapshot.BSSID,
		SampledAt:      c.snapshot.CapturedAt,
		LastTransition: c.lastTransition,
	}
	if c.settled {
		status.Mode = c.mode.String()
	}
	if c.lastError != nil {
		status.Error = c.lastError.Error()
	}
	return status
}

// broadcastStatus sends status update to listener.
func (c *Controller) broadcastStatus() {
	c.mu.RLock()
	listener := c.statusListener
	c.mu.RUnlock()
	if listener != nil {
		listener(c.GetStatusPayload())
	}
}

// setError records a failed transition and broadcasts status.
func (c *Controller) setError(err error) {
	c.mu.Lock()
	c.lastError = err
	c.mu.Unlock()
	c.broadcastStatus()
}
