package wireless

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debug(string, ...interface{}) {}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warnings)
}

func staticQuery(out string, err error) WirelessQuery {
	return QueryFunc(func(context.Context) ([]byte, error) {
		return []byte(out), err
	})
}

func TestSampleAssociated(t *testing.T) {
	log := &recordingLogger{}
	p := NewProbe(staticQuery(associatedOutput, nil), log, time.Second)

	snap := p.Sample(context.Background())
	if !snap.LinkUp {
		t.Fatal("expected link up")
	}
	if snap.SSID != "HomeWifi" || snap.BSSID != "0:11:22:33:44:55" {
		t.Errorf("identifiers = %q/%q", snap.SSID, snap.BSSID)
	}
	if snap.CapturedAt.IsZero() {
		t.Error("CapturedAt not set")
	}
	if log.count() != 0 {
		t.Errorf("unexpected warnings: %v", log.warnings)
	}
}

func TestSampleLinkDownIsNotAFailure(t *testing.T) {
	log := &recordingLogger{}
	p := NewProbe(staticQuery("AirPort: Off\n", nil), log, time.Second)

	snap := p.Sample(context.Background())
	if snap.LinkUp {
		t.Fatal("expected link down")
	}
	if log.count() != 0 {
		t.Errorf("link down should not be logged as failure: %v", log.warnings)
	}
}

func TestSampleFailuresDegradeToLinkDown(t *testing.T) {
	tests := []struct {
		name  string
		query WirelessQuery
	}{
		{"query error", staticQuery("", errors.New("exec: airport: not found"))},
		{"unsupported", staticQuery("", ErrUnsupported)},
		{"malformed", staticQuery("garbage", nil)},
		{"panic", QueryFunc(func(context.Context) ([]byte, error) { panic("boom") })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			p := NewProbe(tt.query, log, time.Second)

			snap := p.Sample(context.Background())
			if snap.LinkUp || snap.SSID != "" || snap.BSSID != "" {
				t.Errorf("expected empty link-down snapshot, got %+v", snap)
			}
			if log.count() != 1 {
				t.Fatalf("expected one probe failure warning, got %d", log.count())
			}
			if !strings.Contains(log.warnings[0], "probe failure") {
				t.Errorf("warning = %q", log.warnings[0])
			}
		})
	}
}

func TestSampleTimesOutOnHungQuery(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	hung := QueryFunc(func(context.Context) ([]byte, error) {
		<-release
		return []byte(associatedOutput), nil
	})

	log := &recordingLogger{}
	p := NewProbe(hung, log, 50*time.Millisecond)

	start := time.Now()
	snap := p.Sample(context.Background())
	if time.Since(start) > 2*time.Second {
		t.Fatalf("Sample blocked for %s", time.Since(start))
	}
	if snap.LinkUp {
		t.Error("timed-out probe should report link down")
	}
	if log.count() != 1 {
		t.Errorf("expected timeout to be logged, got %d warnings", log.count())
	}
}
