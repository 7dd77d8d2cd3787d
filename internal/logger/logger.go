// Package logger holds the process-wide structured logger used by the boot
// sequence and the allocators.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// L is the global logger instance. It's initialized to discard all output by default.
// Call Init() to enable logging.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// allocTrace gates per-allocation debug records - controlled by CALIGA_LOG_ALLOC env var.
var allocTrace = os.Getenv("CALIGA_LOG_ALLOC") != ""

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Writer  io.Writer  // Destination, usually the diagnostic channel. Default: os.Stderr
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled
}

// Init configures logging. Call before any log calls.
// If opts.Enabled is false, all log output is discarded.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := opts.Level
	if level == 0 {
		level = slog.LevelInfo
	}

	L = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetAllocTrace turns per-allocation tracing on or off, overriding CALIGA_LOG_ALLOC.
func SetAllocTrace(on bool) { allocTrace = on }

// Trace logs a debug record for a single allocator operation. It is a no-op
// unless allocation tracing is enabled.
func Trace(msg string, args ...any) {
	if allocTrace {
		L.Debug(msg, args...)
	}
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }
