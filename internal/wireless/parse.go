package wireless

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks query output that could not be parsed into a snapshot.
var ErrMalformed = errors.New("malformed wireless query output")

const (
	keyPower = "AirPort"
	keyState = "state"
	keySSID  = "SSID"
	keyBSSID = "BSSID"

	stateRunning = "running"
	powerOff     = "Off"
)

// Info is the parsed form of `airport -I` output.
type Info struct {
	PoweredOff bool
	State      string
	SSID       string
	BSSID      string
}

// LinkUp reports whether the interface is associated with a network.
func (i Info) LinkUp() bool {
	return !i.PoweredOff && i.State == stateRunning
}

// ParseAirportInfo parses the "key: value" lines printed by `airport -I`.
// Values are kept verbatim apart from surrounding whitespace. Any output
// that does not establish both the link state and, when associated, at
// least one identifier is rejected with ErrMalformed.
func ParseAirportInfo(out []byte) (Info, error) {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return Info{}, fmt.Errorf("%w: line without separator %q", ErrMalformed, line)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return Info{}, fmt.Errorf("%w: empty key in %q", ErrMalformed, line)
		}
		fields[key] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(fields) == 0 {
		return Info{}, fmt.Errorf("%w: no fields", ErrMalformed)
	}

	if power, ok := fields[keyPower]; ok {
		if power == powerOff {
			return Info{PoweredOff: true}, nil
		}
	}

	state, ok := fields[keyState]
	if !ok {
		return Info{}, fmt.Errorf("%w: missing %q", ErrMalformed, keyState)
	}
	info := Info{State: state}
	if !info.LinkUp() {
		return info, nil
	}

	info.SSID = fields[keySSID]
	info.BSSID = fields[keyBSSID]
	if info.SSID == "" && info.BSSID == "" {
		return Info{}, fmt.Errorf("%w: associated but no SSID or BSSID", ErrMalformed)
	}
	return info, nil
}
