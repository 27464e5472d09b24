package logger

import (
	"context"

	"github.com/salesdesk/backend/internal/domain/identity"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request id and a logger carrying it.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	l := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, l), l
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithSession enriches the context logger with the caller identity.
func WithSession(ctx context.Context, s identity.Session) context.Context {
	l := FromContext(ctx).With(
		zap.String("user_id", s.UserID.String()),
		zap.String("reference_id", s.ReferenceID),
		zap.String("role", string(s.Role)),
	)
	return WithContext(ctx, l)
}

// FromContextOr is L with fallback standing in when ctx carries no logger.
func FromContextOr(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if _, ok := ctx.Value(loggerKey).(*zap.Logger); ok || fallback == nil {
		return L(ctx)
	}
	return L(WithContext(ctx, fallback))
}

// L returns the context logger with trace correlation fields when a span is
// active.
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
