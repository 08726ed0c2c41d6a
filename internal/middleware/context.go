package middleware

import (
	"context"

	"github.com/latoulicious/holocron/pkg/logging"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyRequestID ctxKey = "req_id"
	ctxKeySession   ctxKey = "session"
	ctxKeyLogger    ctxKey = "logger"
)

// WithRequestID stores request id in context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestID gets request id from context
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRequestID).(string)
	return v, ok
}

// WithLogger stores the request-scoped logger in context
func WithLogger(ctx context.Context, l logging.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, l)
}

// LoggerFrom returns the request-scoped logger, or a component logger when absent
func LoggerFrom(ctx context.Context) logging.Logger {
	if l, ok := ctx.Value(ctxKeyLogger).(logging.Logger); ok && l != nil {
		return l
	}
	return logging.GetGlobalLoggerFactory().CreateLogger("http")
}
