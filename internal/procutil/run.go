// Package procutil runs external OS utilities with a bounded timeout.
package procutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a command when the caller passes zero.
const DefaultTimeout = 5 * time.Second

// ErrTimeout is returned when a command is killed for exceeding its timeout.
var ErrTimeout = errors.New("command timed out")

// Result holds the combined output and exit status of a finished command.
type Result struct {
	Output   []byte
	ExitCode int
}

// Run executes name with args and returns its combined output.
// A non-zero exit is reported as an *ExitError carrying the output.
func Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	// Do not let a stuck grandchild holding the pipe keep us waiting.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	res := Result{Output: buf.Bytes(), ExitCode: -1}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() == context.DeadlineExceeded {
		return res, fmt.Errorf("%s: %w after %s", name, ErrTimeout, timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, &ExitError{Name: name, Code: res.ExitCode, Output: string(bytes.TrimSpace(res.Output))}
		}
		return res, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Name   string
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Name, e.Code, e.Output)
}

// ExitCode extracts the exit status from err, or -1 when err carries none.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}
