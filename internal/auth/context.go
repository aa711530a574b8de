// Package auth carries the resolved caller identity. Session handling and
// identity resolution live in an external system; this core only consumes
// an opaque user id through the Resolver interface.
package auth

import "context"

type contextKey struct{}

// WithUserID attaches the resolved user id to the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the caller's user id, or "" when unauthenticated.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
