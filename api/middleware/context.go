package middleware

import "context"

type ctxKey string

const ctxSessionID ctxKey = "session_id"

// WithSessionID seeds the context with an authenticated session id.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// SessionIDFromContext returns the authenticated cart session id, if any.
func SessionIDFromContext(ctx context.Context) string {
	if value, ok := ctx.Value(ctxSessionID).(string); ok {
		return value
	}
	return ""
}
