package logger

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
}

func TestLogLineFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf)
	l.now = fixedClock

	l.Info("probe returned %s", "HomeWifi")
	l.Transition("untrusted -> trusted")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if lines[0] != "[2026-10-17 09:30:00] INFO: probe returned HomeWifi" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "[2026-10-17 09:30:00] TRANS: untrusted -> trusted" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestDebugSuppressedUntilEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf)

	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written while disabled: %q", buf.String())
	}

	l.SetDebug(true)
	l.Debug("shown")
	if !strings.Contains(buf.String(), "DEBUG: shown") {
		t.Errorf("debug line missing: %q", buf.String())
	}
}

func TestListenersReceiveLines(t *testing.T) {
	l := Discard()
	var got []string
	l.AddListener(func(line string) { got = append(got, line) })

	l.Warning("link down")
	l.Error("networksetup failed")

	if len(got) != 2 {
		t.Fatalf("listener got %d lines, want 2", len(got))
	}
	if !strings.Contains(got[0], "WARN: link down") {
		t.Errorf("got[0] = %q", got[0])
	}
	if !strings.Contains(got[1], "ERROR: networksetup failed") {
		t.Errorf("got[1] = %q", got[1])
	}
}

func TestFileLoggerAppendsAndReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "safeproxy.log")

	l, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("first")
	l.Close()

	l, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	l.Info("second")
	l.Close()

	data, err := ReadLogs(path)
	if err != nil {
		t.Fatalf("ReadLogs: %v", err)
	}
	if !strings.Contains(data, "INFO: first") || !strings.Contains(data, "INFO: second") {
		t.Errorf("log file missing lines: %q", data)
	}
	if l.Path() != path {
		t.Errorf("Path = %q, want %q", l.Path(), path)
	}
}

func TestRecoverLogsPanic(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf)

	func() {
		defer l.Recover("poller")
		panic("boom")
	}()

	if !strings.Contains(buf.String(), "PANIC in poller: boom") {
		t.Errorf("panic not logged: %q", buf.String())
	}
}
