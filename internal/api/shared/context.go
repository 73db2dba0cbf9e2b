// Package shared holds the request plumbing used by handlers and middleware:
// context keys, JSON decoding and the error envelope.
package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ContextKey namespaces values stored in a request context.
type ContextKey string

const (
	// UserIDContextKey holds the authenticated caller's uuid.UUID.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey holds the request's trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDHeader lets a caller supply its own trace ID.
	TraceIDHeader = "X-Trace-ID"

	maxTraceIDLength = 64
)

// SetTraceID stores traceID in ctx, generating one when it is empty or
// implausibly long.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	traceID = strings.TrimSpace(traceID)
	if traceID == "" || len(traceID) > maxTraceIDLength {
		traceID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace ID in ctx, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithUserID stores the authenticated user in ctx.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserID returns the authenticated user in ctx. The second value is false
// when the request was not authenticated.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
