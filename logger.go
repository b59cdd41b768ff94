package fsroute

import (
	"io"
	"log/slog"
	"os"
)

// Logger provides structured, request-scoped logging. It wraps log/slog
// the same way across fsroute: a thin facade so call sites never import
// slog directly.
type Logger struct {
	slog *slog.Logger
}

// NewLogger creates a Logger that writes JSON to stdout at INFO level.
func NewLogger() *Logger {
	return NewLoggerWith(os.Stdout, slog.LevelInfo)
}

// NewLoggerWith creates a Logger writing JSON to w at the given level.
// Tests use this to capture output and to enable debug-level logging.
func NewLoggerWith(w io.Writer, level slog.Leveler) *Logger {
	return &Logger{
		slog: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// Info logs at INFO level.
func (l *Logger) Info(msg string, args ...any) { l.slog.Info(msg, args...) }

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, args ...any) { l.slog.Warn(msg, args...) }

// Error logs at ERROR level.
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }

// Enabled reports whether the logger would emit a record at level (used to
// gate expensive detail, e.g. stack traces, behind debug mode).
func (l *Logger) Enabled(level slog.Level) bool {
	return l.slog.Enabled(nil, level)
}

// With returns a child Logger with args merged into every subsequent entry.
// The middleware pipeline uses this to attach middleware=<name> (§4.5).
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}
