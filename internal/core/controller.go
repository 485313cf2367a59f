// Package core provides the trust controller: the state machine that keeps
// the SOCKS proxy engaged on untrusted networks and off on trusted ones.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/user/safeproxy/internal/trust"
	"github.com/user/safeproxy/internal/wireless"
)

// Sampler returns the current wireless snapshot. It never fails; query
// problems surface as a link-down snapshot.
type Sampler interface {
	Sample(ctx context.Context) wireless.Snapshot
}

// ProxyDriver switches the SOCKS proxy for a network service.
type ProxyDriver interface {
	SetEnabled(ctx context.Context, enabled bool, service, host string, port int) error
	IsEnabled(ctx context.Context, service string) (bool, error)
}

// Tunnel is the process serving the SOCKS endpoint.
type Tunnel interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
}

// LocationSwitcher activates a named network location.
type LocationSwitcher interface {
	SwitchLocation(ctx context.Context, name string) error
	CurrentLocation(ctx context.Context) (string, error)
}

// Logger is the event sink.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Transition(format string, args ...interface{})
}

// ProxySettings says where the proxy is installed and what it points at.
type ProxySettings struct {
	Service string
	Host    string
	Port    int
}

// Options carries the optional collaborators.
type Options struct {
	Tunnel            Tunnel
	Locations         LocationSwitcher
	UntrustedLocation string
}

// Controller polls the probe, classifies the snapshot, and drives the proxy
// to match. Cycles are serialized; the mode is only changed after the
// driver reports success.
type Controller struct {
	cycleMu sync.Mutex

	trust  trust.Config
	probe  Sampler
	driver ProxyDriver
	log    Logger
	proxy  ProxySettings
	opts   Options
	now    func() time.Time

	mu             sync.RWMutex
	mode           Mode
	settled        bool
	classification trust.Classification
	snapshot       wireless.Snapshot
	lastTransition time.Time
	lastError      error
	statusListener StatusListener
}

// NewController wires a controller. It performs no I/O; call Init to
// derive the initial state.
func NewController(cfg trust.Config, probe Sampler, driver ProxyDriver, log Logger, proxy ProxySettings, opts Options) *Controller {
	return &Controller{
		trust:  cfg,
		probe:  probe,
		driver: driver,
		log:    log,
		proxy:  proxy,
		opts:   opts,
		now:    time.Now,
	}
}

// Init derives the initial state from one sample. An Unknown sample is
// treated as untrusted so the proxy comes up until a trusted network is
// seen. A driver failure leaves the controller unsettled and the next
// PollOnce retries.
func (c *Controller) Init(ctx context.Context) error {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	snap := c.probe.Sample(ctx)
	class := trust.Classify(snap, c.trust)
	c.record(snap, class)

	target := class
	if class == trust.Unknown {
		c.log.Warning("initial sample has no link, assuming untrusted")
		target = trust.Untrusted
	}
	return c.transition(ctx, target, snap, true)
}

// Resume is Init for a process that may be picking up where an earlier
// one left off. The mode is seeded from the OS and a normal poll follows,
// so nothing is re-applied when the network and proxy already agree. If
// the OS cannot be queried it falls back to Init.
func (c *Controller) Resume(ctx context.Context) error {
	if err := c.Observe(ctx); err != nil {
		return c.Init(ctx)
	}
	c.PollOnce(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// PollOnce runs one probe, classify, maybe-transition cycle. Failures are
// logged and contained; the next cycle retries.
func (c *Controller) PollOnce(ctx context.Context) {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	snap := c.probe.Sample(ctx)
	class := trust.Classify(snap, c.trust)
	c.record(snap, class)

	c.mu.RLock()
	mode, settled := c.mode, c.settled
	c.mu.RUnlock()

	target := class
	if class == trust.Unknown {
		if settled {
			c.log.Info("link down, holding last mode (%s)", mode)
			return
		}
		target = trust.Untrusted
	}

	if settled && mode == stableMode(target) {
		c.log.Debug("%s network %s, no change", target, snap)
		return
	}

	_ = c.transition(ctx, target, snap, true)
}

// BringProxy forces the proxy up or down regardless of classification.
func (c *Controller) BringProxy(ctx context.Context, dir Direction) error {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	target := trust.Trusted
	if dir == Up {
		target = trust.Untrusted
	}
	c.log.Info("manual override: bringing proxy %s", dir)

	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()
	return c.transition(ctx, target, snap, false)
}

// Observe seeds the proxy flag from the OS without changing anything.
// Used by short-lived commands that need ProxyRunning without a full Init.
func (c *Controller) Observe(ctx context.Context) error {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	engaged, err := c.driver.IsEnabled(ctx, c.proxy.Service)
	if err != nil {
		c.log.Error("failed to query proxy state: %v", err)
		return err
	}

	// A proxy pointing at a dead tunnel is not a stable mode; leave the
	// controller unsettled so the next poll brings the tunnel back.
	settled := true
	if r, ok := c.opts.Tunnel.(interface{ Running() bool }); ok && engaged && !r.Running() {
		c.log.Warning("proxy is on but the tunnel is not running")
		settled = false
	}

	c.mu.Lock()
	c.mode = ModeTrusted
	if engaged {
		c.mode = ModeUntrusted
	}
	c.settled = settled
	c.mu.Unlock()

	c.log.Debug("observed proxy %s on %s", onOff(engaged), c.proxy.Service)
	return nil
}

// Refresh samples and classifies the network without acting on it.
func (c *Controller) Refresh(ctx context.Context) trust.Classification {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	snap := c.probe.Sample(ctx)
	class := trust.Classify(snap, c.trust)
	c.record(snap, class)
	return class
}

// ProxyRunning returns the last known proxy state without querying the OS.
func (c *Controller) ProxyRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode.ProxyEngaged
}

// CurrentClassification returns the classification of the latest sample.
func (c *Controller) CurrentClassification() trust.Classification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.classification
}

// Mode returns the current mode and whether one has been established.
func (c *Controller) Mode() (Mode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode, c.settled
}

func (c *Controller) record(snap wireless.Snapshot, class trust.Classification) {
	c.mu.Lock()
	c.snapshot = snap
	c.classification = class
	c.mu.Unlock()
}

// transition drives the tunnel, proxy, and optionally the location to the
// stable mode for target. The mode is updated only on success.
func (c *Controller) transition(ctx context.Context, target trust.Classification, snap wireless.Snapshot, switchLocation bool) error {
	want := stableMode(target)

	c.mu.RLock()
	old, settled := c.mode, c.settled
	c.mu.RUnlock()

	from := "initial"
	if settled {
		from = old.Trust.String()
	}

	if err := c.applyProxy(ctx, want.ProxyEngaged); err != nil {
		c.log.Error("transition %s -> %s failed (%s), will retry: %v", from, target, snap, err)
		c.setError(err)
		return err
	}

	if switchLocation {
		c.switchLocation(ctx, target)
	}

	c.mu.Lock()
	c.mode = want
	c.settled = true
	c.lastTransition = c.now()
	c.lastError = nil
	c.mu.Unlock()

	c.log.Transition("%s -> %s (%s), proxy %s", from, target, snap, onOff(want.ProxyEngaged))
	c.broadcastStatus()
	return nil
}

func (c *Controller) applyProxy(ctx context.Context, engage bool) error {
	if engage {
		if c.opts.Tunnel != nil {
			if err := c.opts.Tunnel.Up(ctx); err != nil {
				return fmt.Errorf("tunnel up: %w", err)
			}
		}
		return c.driver.SetEnabled(ctx, true, c.proxy.Service, c.proxy.Host, c.proxy.Port)
	}

	if err := c.driver.SetEnabled(ctx, false, c.proxy.Service, c.proxy.Host, c.proxy.Port); err != nil {
		return err
	}
	if c.opts.Tunnel != nil {
		if err := c.opts.Tunnel.Down(ctx); err != nil {
			c.log.Warning("proxy disabled but tunnel did not stop: %v", err)
		}
	}
	return nil
}

func (c *Controller) switchLocation(ctx context.Context, target trust.Classification) {
	if c.opts.Locations == nil {
		return
	}
	name := c.opts.UntrustedLocation
	if target == trust.Trusted {
		name = c.trust.TrustedLocation
	}
	if name == "" {
		return
	}
	if current, err := c.opts.Locations.CurrentLocation(ctx); err == nil && current == name {
		c.log.Debug("network location already %q", name)
		return
	}
	if err := c.opts.Locations.SwitchLocation(ctx, name); err != nil {
		c.log.Warning("failed to switch network location to %q: %v", name, err)
		return
	}
	c.log.Info("network location switched to %q", name)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
