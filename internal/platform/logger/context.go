package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithLogger returns a context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext retrieves the logger from the context, falling back to the
// process default when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the logger from the context, falling back
// to the provided default (typically a component-scoped logger) when none
// was attached.
func FromContextOrDefault(ctx context.Context, def *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	if def != nil {
		return def
	}
	return slog.Default()
}
