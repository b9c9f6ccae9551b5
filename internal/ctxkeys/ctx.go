package ctxkeys

import (
	"context"
	"time"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserIDKey       contextKey = "user_id"
	RequestIDKey    contextKey = "request_id"
	RequestStartKey contextKey = "request_start"
)

func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestStart returns when the request entered the middleware chain,
// or the zero time outside a request.
func RequestStart(ctx context.Context) time.Time {
	t, _ := ctx.Value(RequestStartKey).(time.Time)
	return t
}

func WithRequestStart(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, RequestStartKey, t)
}
