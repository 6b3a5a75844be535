package pagedmem

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pagedmem-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSupplier adds a supplier field to the logger.
func (l *Logger) WithSupplier(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("supplier", name),
	}
}

// WithArena adds an arena field to the logger.
func (l *Logger) WithArena(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("arena", name),
	}
}

// LogGrow logs an arena growth (slow path) operation.
func (l *Logger) LogGrow(ctx context.Context, pages int, allocatedSize int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "arena growth failed",
			"pages_acquired", pages,
			"allocated_size", allocatedSize,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "arena grown",
			"pages_acquired", pages,
			"allocated_size", allocatedSize,
		)
	}
}

// LogRelease logs the teardown of an arena.
func (l *Logger) LogRelease(ctx context.Context, pages int, err error) {
	if err != nil {
		l.WarnContext(ctx, "arena released with errors",
			"pages", pages,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "arena released",
			"pages", pages,
		)
	}
}

// LogPageFailure logs a page the supplier could not obtain.
func (l *Logger) LogPageFailure(ctx context.Context, size int, err error) {
	l.ErrorContext(ctx, "page allocation failed",
		"size", size,
		"error", err,
	)
}

// LogPoolRelease logs a release-all of a pool.
func (l *Logger) LogPoolRelease(ctx context.Context, suppliers int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "pool release failed",
			"suppliers", suppliers,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "pool released",
			"suppliers", suppliers,
		)
	}
}
