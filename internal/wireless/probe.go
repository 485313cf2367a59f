package wireless

import (
	"context"
	"errors"
	"time"
)

// AirportPath is the private-framework tool that reports Wi-Fi status.
const AirportPath = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"

// ErrUnsupported is returned by queries on platforms without a wireless tool.
var ErrUnsupported = errors.New("wireless query not supported on this platform")

// WirelessQuery returns the raw output of the OS wireless status tool.
type WirelessQuery interface {
	Query(ctx context.Context) ([]byte, error)
}

// QueryFunc adapts a function to WirelessQuery.
type QueryFunc func(ctx context.Context) ([]byte, error)

// Query calls f.
func (f QueryFunc) Query(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// Logger receives probe diagnostics.
type Logger interface {
	Warning(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Probe turns wireless queries into snapshots. A failed query never
// propagates: it is logged and reported as a link-down snapshot.
type Probe struct {
	query   WirelessQuery
	log     Logger
	timeout time.Duration
	now     func() time.Time
}

// NewProbe creates a probe. timeout bounds each query; zero means 5s.
func NewProbe(query WirelessQuery, log Logger, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Probe{
		query:   query,
		log:     log,
		timeout: timeout,
		now:     time.Now,
	}
}

// Sample queries the wireless subsystem once.
func (p *Probe) Sample(ctx context.Context) Snapshot {
	snap, err := p.sample(ctx)
	if err != nil {
		p.log.Warning("probe failure: %v", err)
		return Down(p.now())
	}
	p.log.Debug("probe: %s", snap)
	return snap
}

func (p *Probe) sample(ctx context.Context) (snap Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("wireless query panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := p.query.Query(ctx)
		done <- result{out, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	if res.err != nil {
		return Snapshot{}, res.err
	}

	info, err := ParseAirportInfo(res.out)
	if err != nil {
		return Snapshot{}, err
	}
	if !info.LinkUp() {
		return Down(p.now()), nil
	}
	return Associated(info.SSID, info.BSSID, p.now()), nil
}
