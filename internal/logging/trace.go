package logging

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const callIDKey contextKey = "call_id"

// NewCallID generates a unique id for one backend call.
func NewCallID() string {
	return uuid.NewString()
}

// WithCallID adds a call ID to context.
// If id is empty, generates a new one.
func WithCallID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewCallID()
	}
	return context.WithValue(ctx, callIDKey, id)
}

// CallID extracts the call ID from context.
// Returns empty string if not present.
func CallID(ctx context.Context) string {
	if v, ok := ctx.Value(callIDKey).(string); ok {
		return v
	}
	return ""
}
