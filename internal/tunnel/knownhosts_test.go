package tunnel

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

func testKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	key, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("NewPublicKey: %v", err)
	}
	return key
}

func writeKnownHosts(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "known_hosts")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSplitTarget(t *testing.T) {
	tests := []struct {
		target   string
		wantHost string
		wantPort int
	}{
		{"server.example.com", "server.example.com", 22},
		{"alice@server.example.com", "server.example.com", 22},
		{"alice@server.example.com:2222", "server.example.com", 2222},
		{"[::1]:2200", "::1", 2200},
	}
	for _, tt := range tests {
		host, port := SplitTarget(tt.target)
		if host != tt.wantHost || port != tt.wantPort {
			t.Errorf("SplitTarget(%q) = %q, %d; want %q, %d", tt.target, host, port, tt.wantHost, tt.wantPort)
		}
	}
}

func TestKnownHostPlainEntries(t *testing.T) {
	key := testKey(t)
	path := writeKnownHosts(t,
		"# comment",
		knownhosts.Line([]string{"server.example.com"}, key),
		knownhosts.Line([]string{"[alt.example.com]:2222"}, key),
	)

	tests := []struct {
		host string
		port int
		want bool
	}{
		{"server.example.com", 22, true},
		{"alt.example.com", 2222, true},
		{"alt.example.com", 22, false},
		{"other.example.com", 22, false},
	}
	for _, tt := range tests {
		got, err := KnownHost(path, tt.host, tt.port)
		if err != nil {
			t.Fatalf("KnownHost: %v", err)
		}
		if got != tt.want {
			t.Errorf("KnownHost(%s:%d) = %v, want %v", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestKnownHostHashedEntries(t *testing.T) {
	key := testKey(t)
	path := writeKnownHosts(t, knownhosts.Line([]string{knownhosts.HashHostname("hidden.example.com")}, key))

	got, err := KnownHost(path, "hidden.example.com", 22)
	if err != nil {
		t.Fatalf("KnownHost: %v", err)
	}
	if !got {
		t.Error("hashed entry not matched")
	}

	got, err = KnownHost(path, "visible.example.com", 22)
	if err != nil {
		t.Fatalf("KnownHost: %v", err)
	}
	if got {
		t.Error("hashed entry matched the wrong host")
	}
}

func TestKnownHostRevokedIgnored(t *testing.T) {
	key := testKey(t)
	path := writeKnownHosts(t, "@revoked "+knownhosts.Line([]string{"server.example.com"}, key))

	got, err := KnownHost(path, "server.example.com", 22)
	if err != nil {
		t.Fatalf("KnownHost: %v", err)
	}
	if got {
		t.Error("revoked entry should not count as known")
	}
}

func TestKnownHostMissingFile(t *testing.T) {
	_, err := KnownHost(filepath.Join(t.TempDir(), "absent"), "server", 22)
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
