// Package logger provides component-scoped structured logging for pocketbot.
//
// Every call names the component that emits it ("router", "telegram", ...)
// so log lines can be filtered per subsystem.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var (
	mu   sync.RWMutex
	base = newLogger(os.Stderr)
)

func newLogger(w io.Writer) zerolog.Logger {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// SetOutput redirects all log output to w, keeping the current level.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	lvl := base.GetLevel()
	base = newLogger(w).Level(lvl)
}

// SetLevel sets the minimum level that is written.
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	base = base.Level(toZerolog(level))
}

// ParseLevel maps a config string to a LogLevel. Unknown values yield INFO.
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug", "DEBUG":
		return DEBUG
	case "warn", "WARN", "warning":
		return WARN
	case "error", "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func toZerolog(level LogLevel) zerolog.Level {
	switch level {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func write(level LogLevel, component, msg string, fields map[string]any) {
	l := current()
	ev := l.WithLevel(toZerolog(level))
	if ev == nil {
		return
	}
	if component != "" {
		ev = ev.Str("component", component)
	}
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg(msg)
}

func DebugC(component, msg string) { write(DEBUG, component, msg, nil) }
func InfoC(component, msg string)  { write(INFO, component, msg, nil) }
func WarnC(component, msg string)  { write(WARN, component, msg, nil) }
func ErrorC(component, msg string) { write(ERROR, component, msg, nil) }

func DebugCF(component, msg string, fields map[string]any) { write(DEBUG, component, msg, fields) }
func InfoCF(component, msg string, fields map[string]any)  { write(INFO, component, msg, fields) }
func WarnCF(component, msg string, fields map[string]any)  { write(WARN, component, msg, fields) }
func ErrorCF(component, msg string, fields map[string]any) { write(ERROR, component, msg, fields) }
