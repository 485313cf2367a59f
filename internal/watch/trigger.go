// Package watch schedules poll cycles from a fixed interval and from
// changes under watched paths.
package watch

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reason says what fired a cycle.
type Reason string

const (
	ReasonTick   Reason = "tick"
	ReasonChange Reason = "change"
)

// Logger receives watcher diagnostics.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Trigger merges ticker and file-system events into a single sequential
// stream of cycles. fn never runs concurrently with itself.
type Trigger struct {
	interval time.Duration
	debounce time.Duration
	paths    []string
	log      Logger
}

// NewTrigger creates a trigger. A zero interval disables the ticker; an
// empty paths list disables watching.
func NewTrigger(interval, debounce time.Duration, paths []string, log Logger) *Trigger {
	return &Trigger{
		interval: interval,
		debounce: debounce,
		paths:    paths,
		log:      log,
	}
}

// Run invokes fn for every tick and every debounced burst of changes.
// Blocks until ctx is cancelled.
func (t *Trigger) Run(ctx context.Context, fn func(ctx context.Context, reason Reason)) error {
	var events <-chan fsnotify.Event
	var errs <-chan error

	if len(t.paths) > 0 {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			t.log.Warning("file watching unavailable, polling only: %v", err)
		} else {
			defer func() { _ = watcher.Close() }()
			watched := 0
			for _, p := range t.paths {
				if err := watcher.Add(p); err != nil {
					t.log.Warning("cannot watch %s: %v", p, err)
					continue
				}
				watched++
			}
			if watched > 0 {
				events = watcher.Events
				errs = watcher.Errors
			}
		}
	}

	var tick <-chan time.Time
	if t.interval > 0 {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	// Single debounce timer, initialized stopped; the first event starts it.
	debounceTimer := time.NewTimer(t.debounce)
	debounceTimer.Stop()
	defer debounceTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-tick:
			fn(ctx, ReasonTick)

		case <-debounceTimer.C:
			fn(ctx, ReasonChange)

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			t.log.Debug("watch event: %s", event)
			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(t.debounce)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			t.log.Warning("watch error: %v", err)
		}
	}
}
