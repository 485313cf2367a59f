package proxy

import (
	"fmt"
)

// ProxyError reports a failed network-configuration command. It is
// recoverable: the caller logs it and retries on the next poll.
type ProxyError struct {
	Op       string
	Service  string
	ExitCode int
	Output   string
	Err      error
}

func (e *ProxyError) Error() string {
	msg := fmt.Sprintf("proxy %s on %q failed", e.Op, e.Service)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProxyError) Unwrap() error {
	return e.Err
}
