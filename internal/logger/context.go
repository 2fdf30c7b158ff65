package logger

import "context"

// contextKey is a private type to prevent collisions with other context keys.
type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	callIDKey    contextKey = "call_id"
)

// WithSessionID returns a new context carrying the generation session ID.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionID extracts the session ID from the context, or "" if unset.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// WithCallID returns a new context carrying the tool call ID.
func WithCallID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callIDKey, id)
}

// CallID extracts the tool call ID from the context, or "" if unset.
func CallID(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey).(string)
	return id
}
