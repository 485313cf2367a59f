package tunnel

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SplitTarget splits an ssh target such as "user@server" or
// "user@server:2222" into its host and port.
func SplitTarget(target string) (host string, port int) {
	if i := strings.LastIndex(target, "@"); i >= 0 {
		target = target[i+1:]
	}
	if h, p, err := net.SplitHostPort(target); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			return h, n
		}
	}
	return target, 22
}

// KnownHost reports whether host:port has an entry in the known_hosts
// file at path. Hashed entries are matched as well as plain ones.
func KnownHost(path, host string, port int) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	want := knownhosts.Normalize(net.JoinHostPort(host, strconv.Itoa(port)))

	rest := data
	for len(rest) > 0 {
		var marker string
		var hosts []string
		marker, hosts, _, _, rest, err = ssh.ParseKnownHosts(rest)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, fmt.Errorf("parse %s: %w", path, err)
		}
		if marker == "@revoked" {
			continue
		}
		for _, h := range hosts {
			if h == want || hashedMatch(h, want) {
				return true, nil
			}
		}
	}
	return false, nil
}

// hashedMatch checks a "|1|salt|hash" entry against host.
func hashedMatch(entry, host string) bool {
	parts := strings.Split(entry, "|")
	if len(parts) != 4 || parts[0] != "" || parts[1] != "1" {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}
	mac := hmac.New(sha1.New, salt)
	mac.Write([]byte(host))
	return hmac.Equal(mac.Sum(nil), want)
}
