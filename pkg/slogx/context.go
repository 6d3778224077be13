package slogx

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithContext returns a copy of ctx carrying logger.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger carried by ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	return For(ctx, nil)
}

// For prefers the logger carried by ctx over base, falling back to
// slog.Default when neither is set, and appends args as attributes.
func For(ctx context.Context, base *slog.Logger, args ...any) *slog.Logger {
	l, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || l == nil {
		l = base
	}
	if l == nil {
		l = slog.Default()
	}
	if len(args) > 0 {
		l = l.With(args...)
	}
	return l
}

// WithRequestID tags the context logger with reqID.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return WithContext(ctx, FromContext(ctx).With("request_id", reqID))
}
