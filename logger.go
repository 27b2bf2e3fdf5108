package heapslice

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with heapslice-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithAllocator adds an allocator field to the logger.
func (l *Logger) WithAllocator(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("allocator", name),
	}
}

// LogConfigure logs the installation of the process-wide allocator.
func (l *Logger) LogConfigure(ctx context.Context, allocator string, memoryLimit int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "configure failed",
			"allocator", allocator,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "allocator configured",
			"allocator", allocator,
			"memory_limit", memoryLimit,
		)
	}
}

// LogValidation logs a checked text construction.
func (l *Logger) LogValidation(ctx context.Context, size int, err error) {
	if err != nil {
		l.DebugContext(ctx, "utf-8 validation failed",
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "utf-8 validation completed",
			"size", size,
		)
	}
}
