// Package logger holds the process-wide structured logger used by the allocator
// and heapctl.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// L is the global logger instance. It's initialized to discard all output by default.
// Call Init() to enable logging.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// EnvVar turns on debug logging to stderr when set to any non-empty value.
const EnvVar = "HEAP_LOG_ALLOC"

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Output  io.Writer  // Destination. Default: os.Stderr
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled
	JSON    bool       // Emit JSON lines instead of key=value text
}

func init() {
	if os.Getenv(EnvVar) != "" {
		L = New(Options{Enabled: true, Level: slog.LevelDebug})
	}
}

// New builds a logger from opts without touching L.
func New(opts Options) *slog.Logger {
	if !opts.Enabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, hopts))
	}
	return slog.New(slog.NewTextHandler(out, hopts))
}

// Init configures L. Call from main() before any log calls.
func Init(opts Options) {
	L = New(opts)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
