package context

import (
	"context"
)

type contextkey string

const (
	sessionKey contextkey = "session"
)

// ContextSetSession binds the session's store key to ctx.
func ContextSetSession(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKey, key)
}

// ContextGetSession returns the session's store key, or "" when the request
// went around the session middleware.
func ContextGetSession(ctx context.Context) string {
	key, _ := ctx.Value(sessionKey).(string)
	return key
}
