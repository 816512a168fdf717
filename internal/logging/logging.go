// Package logging provides the structured logger used across the service.
package logging

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is a structured key/value logger backed by charmbracelet/log.
type Logger struct {
	l *charmlog.Logger
}

// NewLogger creates a new Logger writing to stdout at the given level.
// Unknown level strings fall back to info.
func NewLogger(level string) *Logger {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}
	return &Logger{
		l: charmlog.NewWithOptions(os.Stdout, charmlog.Options{
			ReportTimestamp: true,
			Level:           lvl,
		}),
	}
}

// Debug logs a debug message with optional key/value pairs.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.l.Debug(msg, keyvals...)
}

// Info logs an informational message with optional key/value pairs.
func (l *Logger) Info(msg string, keyvals ...any) {
	l.l.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key/value pairs.
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.l.Warn(msg, keyvals...)
}

// Error logs an error message with optional key/value pairs.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.l.Error(msg, keyvals...)
}

// With returns a logger with the given key/value pairs attached to every entry.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{l: l.l.With(keyvals...)}
}
