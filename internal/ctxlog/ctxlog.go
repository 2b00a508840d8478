// Package ctxlog carries a slog.Logger through context.Context so that
// deeply nested playback and compilation code logs through the logger the
// application configured, not a package-level global.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is an unexported type so our context key cannot collide with keys
// defined by other packages.
type key struct{}

var loggerKey = key{}

// WithLogger returns a copy of ctx that carries logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger stored by WithLogger. A missing logger is
// a wiring bug, so it panics rather than silently logging into the void.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	panic("ctxlog: logger missing from context")
}
