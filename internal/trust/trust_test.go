package trust

import (
	"testing"
	"time"

	"github.com/user/safeproxy/internal/wireless"
)

var at = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	cfg := NewConfig("Home", "HomeWifi", "00:11:22:33:44:55")

	tests := []struct {
		name string
		snap wireless.Snapshot
		want Classification
	}{
		{"ssid match", wireless.Associated("HomeWifi", "aa:bb:cc:dd:ee:ff", at), Trusted},
		{"bssid match", wireless.Associated("Other", "00:11:22:33:44:55", at), Trusted},
		{"both match", wireless.Associated("HomeWifi", "00:11:22:33:44:55", at), Trusted},
		{"no match", wireless.Associated("CoffeeShop", "aa:bb:cc:dd:ee:ff", at), Untrusted},
		{"case differs", wireless.Associated("homewifi", "", at), Untrusted},
		{"prefix only", wireless.Associated("HomeWifi-5G", "", at), Untrusted},
		{"substring only", wireless.Associated("Home", "", at), Untrusted},
		{"link down", wireless.Down(at), Unknown},
		{"link down with stale ids", wireless.Snapshot{SSID: "HomeWifi", BSSID: "00:11:22:33:44:55"}, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.snap, cfg); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEmptyConfigTrustsNothing(t *testing.T) {
	cfg := NewConfig("Home")
	snaps := []wireless.Snapshot{
		wireless.Associated("HomeWifi", "", at),
		wireless.Associated("", "00:11:22:33:44:55", at),
	}
	for _, s := range snaps {
		if got := Classify(s, cfg); got != Untrusted {
			t.Errorf("Classify(%s) = %s, want untrusted", s, got)
		}
	}
	if cfg.Len() != 0 {
		t.Errorf("Len = %d, want 0", cfg.Len())
	}
}

func TestEmptyIdentifierNeverMatches(t *testing.T) {
	cfg := NewConfig("Home", "", "HomeWifi")
	snap := wireless.Associated("", "aa:bb:cc:dd:ee:ff", at)
	if got := Classify(snap, cfg); got != Untrusted {
		t.Errorf("empty SSID matched: %s", got)
	}
	if cfg.Contains("") {
		t.Error("Contains(\"\") = true")
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	cfg := NewConfig("Work", "CorpNet")
	snap := wireless.Associated("CorpNet", "", at)
	first := Classify(snap, cfg)
	for i := 0; i < 100; i++ {
		if got := Classify(snap, cfg); got != first {
			t.Fatalf("iteration %d: %s != %s", i, got, first)
		}
	}
}

func TestIdentifiersSorted(t *testing.T) {
	cfg := NewConfig("Home", "b", "a", "c", "a")
	got := cfg.Identifiers()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Identifiers = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Identifiers[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
