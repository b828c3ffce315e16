package logger

import (
	"context"
	"log/slog"
)

// contextKey is a private type for context keys defined in this package,
// preventing collisions with keys from other packages.
type contextKey int

// loggerKey is the context key under which the request-scoped logger is stored.
const loggerKey contextKey = iota

// WithLogger returns a copy of the parent context carrying the given logger.
// Handlers and middleware attach request-scoped attributes (like a trace ID)
// to the logger before storing it, so downstream code logs with full context.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext retrieves the logger stored in the context.
// Returns nil if no logger has been stored.
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return log
	}
	return nil
}

// FromContextOrDefault retrieves the logger stored in the context, falling
// back to the provided default, and finally to slog.Default(). It never
// returns nil, so callers can log unconditionally.
func FromContextOrDefault(ctx context.Context, def *slog.Logger) *slog.Logger {
	if log := FromContext(ctx); log != nil {
		return log
	}
	if def != nil {
		return def
	}
	return slog.Default()
}
