// Package logging defines the structured logger the backend clients
// and the CLI share. The default implementation wraps slog.
package logging

import "context"

// Logger logs structured messages. The variadic args are key-value
// pairs:
//
//	log.Warn(ctx, "caching workspaces", "error", err)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)

	// Warn records unusual but non-fatal conditions, such as a cache
	// write failing while the live request succeeded.
	Warn(ctx context.Context, msg string, args ...any)

	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given
	// key-value pairs.
	With(args ...any) Logger
}
