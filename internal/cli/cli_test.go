package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/safeproxy/internal/config"
	"github.com/user/safeproxy/internal/core"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, names ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "safeproxy.yml")
	cfg := config.DefaultConfig()
	cfg.SSH.Host = "alice@server"
	cfg.Trust.TrustedNames = names
	if err := config.NewManager(path).Update(cfg); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTrustAddRemoveList(t *testing.T) {
	path := writeConfig(t, "HomeWifi")

	out, err := execute(t, "--config", path, "trust", "add", "Office", "HomeWifi")
	if err != nil {
		t.Fatalf("trust add: %v", err)
	}
	if !strings.Contains(out, "1 network(s) added, 2 trusted") {
		t.Errorf("unexpected output %q", out)
	}

	out, err = execute(t, "--config", path, "trust", "list")
	if err != nil {
		t.Fatalf("trust list: %v", err)
	}
	if out != "HomeWifi\nOffice\n" {
		t.Errorf("list = %q", out)
	}

	if _, err := execute(t, "--config", path, "trust", "remove", "HomeWifi"); err != nil {
		t.Fatalf("trust remove: %v", err)
	}
	mgr := config.NewManager(path)
	if err := mgr.Load(); err != nil {
		t.Fatal(err)
	}
	if got := mgr.Get().Trust.TrustedNames; len(got) != 1 || got[0] != "Office" {
		t.Errorf("trusted names = %v", got)
	}
}

func TestTrustAddRequiresNames(t *testing.T) {
	path := writeConfig(t)
	if _, err := execute(t, "--config", path, "trust", "add"); err == nil {
		t.Error("expected error with no names")
	}
}

func TestMissingConfigIsConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")
	_, err := execute(t, "--config", path, "trust", "list")
	if err == nil {
		t.Fatal("expected error")
	}
	if code := exitCode(err); code != 78 {
		t.Errorf("exit code = %d, want 78", code)
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(errors.New("boom")) != 1 {
		t.Error("plain errors exit 1")
	}
	wrapped := fmt.Errorf("load: %w", &config.ConfigError{Path: "x", Err: errors.New("bad")})
	if exitCode(wrapped) != 78 {
		t.Error("wrapped config errors exit 78")
	}
}

func TestProxyRejectsBadDirection(t *testing.T) {
	path := writeConfig(t)
	_, err := execute(t, "--config", path, "proxy", "sideways")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRemoveStateFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{".safeproxy.yml", ".safeproxy.log", ".safeproxy.pid", "keep.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := removeStateFiles(filepath.Join(dir, ".safeproxy.*"))
	if err != nil {
		t.Fatalf("removeStateFiles: %v", err)
	}
	if len(removed) != 3 {
		t.Errorf("removed %v", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "keep.txt")); err != nil {
		t.Error("unrelated file removed")
	}
}

func TestStatusReportPrint(t *testing.T) {
	r := statusReport{
		StatusPayload: &core.StatusPayload{
			Classification: "untrusted",
			ProxyEngaged:   true,
			LinkUp:         true,
			SSID:           "CoffeeShop",
			BSSID:          "00:11:22:33:44:55",
		},
		Service:   "Wi-Fi",
		Endpoint:  "localhost:9999",
		Tunnel:    "running",
		TunnelPID: 4242,
		Location:  "Untrusted",
	}
	var buf bytes.Buffer
	r.print(&buf)
	out := buf.String()

	for _, want := range []string{
		"CoffeeShop (00:11:22:33:44:55)",
		"untrusted",
		"on (Wi-Fi -> localhost:9999)",
		"running (pid 4242)",
		"Untrusted",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"name": "safeproxy"`) {
		t.Errorf("version output %q", out)
	}
}

type fixedLocation struct {
	name string
	err  error
}

func (l fixedLocation) CurrentLocation(context.Context) (string, error) {
	return l.name, l.err
}

func TestTrustedLocationFor(t *testing.T) {
	tests := []struct {
		name     string
		current  fixedLocation
		existing string
		want     string
	}{
		{"uses current location", fixedLocation{name: "Home"}, "Automatic", "Home"},
		{"query fails", fixedLocation{err: errors.New("timed out")}, "Automatic", "Automatic"},
		{"empty config falls back to default", fixedLocation{err: errors.New("timed out")}, "", "Automatic"},
		{"current is the untrusted location", fixedLocation{name: "Untrusted"}, "Office", "Office"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Trust.TrustedLocation = tt.existing
			if got := trustedLocationFor(context.Background(), cfg, tt.current); got != tt.want {
				t.Errorf("trustedLocationFor = %q, want %q", got, tt.want)
			}
		})
	}
}
