// Package log provides named, levelled loggers on top of the standard
// library logger.
//
//	l := log.ForComponent("fetcher")
//	l.Debugf("scheduled %q", text) // printed only when debug is on for "fetcher"
//
// All loggers share one destination. The terminal UI owns stderr while it is
// running, so cmd/medfind redirects output to a file before starting it.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger writes lines tagged with its component name.
type Logger struct {
	name string
}

type sink struct {
	mu  sync.Mutex
	std *stdlog.Logger
}

var (
	out = &sink{std: stdlog.New(os.Stderr, "", stdlog.LstdFlags|stdlog.Lmicroseconds)}

	debugAll   atomic.Bool
	debugNames sync.Map // map[string]struct{}

	loggers sync.Map // map[string]*Logger
)

// ForComponent returns the shared logger for name.
func ForComponent(name string) *Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "medfind"
	}
	if l, ok := loggers.Load(name); ok {
		return l.(*Logger)
	}
	l, _ := loggers.LoadOrStore(name, &Logger{name: name})
	return l.(*Logger)
}

// SetOutput redirects every logger. A nil writer discards output.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	out.mu.Lock()
	out.std.SetOutput(w)
	out.mu.Unlock()
}

// SetDebug toggles debug output for all components.
func SetDebug(enabled bool) {
	debugAll.Store(enabled)
}

// EnableDebugFor turns on debug output for the named components only.
func EnableDebugFor(names ...string) {
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			debugNames.Store(name, struct{}{})
		}
	}
}

// DisableDebugFor reverts EnableDebugFor.
func DisableDebugFor(names ...string) {
	for _, name := range names {
		debugNames.Delete(strings.TrimSpace(name))
	}
}

// DebugEnabled reports whether debug lines for name are printed.
func DebugEnabled(name string) bool {
	if debugAll.Load() {
		return true
	}
	_, ok := debugNames.Load(name)
	return ok
}

func (l *Logger) Name() string { return l.name }

func (l *Logger) emit(level, format string, args []any) {
	line := fmt.Sprintf("%-5s %s: %s", level, l.name, fmt.Sprintf(format, args...))
	out.mu.Lock()
	out.std.Println(line)
	out.mu.Unlock()
}

func (l *Logger) Debugf(format string, args ...any) {
	if !DebugEnabled(l.name) {
		return
	}
	l.emit(LevelDebug, format, args)
}

func (l *Logger) Infof(format string, args ...any) {
	l.emit(LevelInfo, format, args)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.emit(LevelWarn, format, args)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.emit(LevelError, format, args)
}
