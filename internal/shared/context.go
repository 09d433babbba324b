package shared

import "context"

type usernameContextKey struct{}

// ContextWithUsername stores the authenticated username in context.
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameContextKey{}, username)
}

// UsernameFromContext extracts the authenticated username from context.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameContextKey{}).(string)
	return username, ok && username != ""
}
