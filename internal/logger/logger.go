// Package logger provides the append-only event log for safeproxy.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"
)

// Level tags a log line.
type Level string

const (
	LevelInfo       Level = "INFO"
	LevelWarning    Level = "WARN"
	LevelError      Level = "ERROR"
	LevelDebug      Level = "DEBUG"
	LevelTransition Level = "TRANS"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger writes timestamped lines to a file or writer and fans them out
// to listeners.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	file      *os.File
	path      string
	debug     bool
	now       func() time.Time
	listeners []func(string)
	listMu    sync.RWMutex
}

// New opens (creating if needed) the log file at path in append mode.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &Logger{out: f, file: f, path: path, now: time.Now}, nil
}

// NewWriter returns a logger writing to w.
func NewWriter(w io.Writer) *Logger {
	return &Logger{out: w, now: time.Now}
}

// Discard returns a logger that drops every line.
func Discard() *Logger {
	return NewWriter(io.Discard)
}

// SetDebug enables DEBUG lines.
func (l *Logger) SetDebug(on bool) {
	l.mu.Lock()
	l.debug = on
	l.mu.Unlock()
}

// Close closes the log file
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
		l.out = io.Discard
	}
}

// AddListener adds a callback that receives each formatted line.
func (l *Logger) AddListener(fn func(string)) {
	l.listMu.Lock()
	defer l.listMu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Log writes one line at the given level.
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	if level == LevelDebug && !l.debug {
		l.mu.Unlock()
		return
	}
	message := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] %s: %s", l.now().Format(timeFormat), level, message)

	fmt.Fprintln(l.out, line)
	if l.file != nil {
		l.file.Sync()
	}
	l.mu.Unlock()

	l.listMu.RLock()
	for _, fn := range l.listeners {
		fn(line)
	}
	l.listMu.RUnlock()
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LevelError, format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LevelDebug, format, args...)
}

// Transition logs a trust/proxy state change.
func (l *Logger) Transition(format string, args ...interface{}) {
	l.Log(LevelTransition, format, args...)
}

// Path returns the path to the log file, or "" for writer-backed loggers.
func (l *Logger) Path() string {
	return l.path
}

// RedirectStderr points the process stderr at the log file so panics
// from a launchd-spawned run end up in the log.
func (l *Logger) RedirectStderr() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		redirectStderr(l.file)
	}
}

// Recover should be deferred at the top of every goroutine to catch panics.
// Usage: go func() { defer log.Recover("myGoroutine"); ... }()
func (l *Logger) Recover(name string) {
	if r := recover(); r != nil {
		l.Error("PANIC in %s: %v\n%s", name, r, debug.Stack())
	}
}

// SafeGo launches a goroutine with panic recovery.
func (l *Logger) SafeGo(name string, fn func()) {
	go func() {
		defer l.Recover(name)
		fn()
	}()
}

// ReadLogs reads the log file at path.
func ReadLogs(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ClearLogs truncates the log file.
func (l *Logger) ClearLogs() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Truncate(0)
}
