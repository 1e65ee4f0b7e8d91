// File: internal/middleware/constants.go
package middleware

import "context"

// Context keys for middleware communication
type contextKey string

const (
	UsernameKey contextKey = "username"
)

// IdentityFrom returns the authenticated username placed in ctx by the JWT middleware.
func IdentityFrom(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok && username != ""
}

// WithIdentity stores username the same way the JWT middleware does.
func WithIdentity(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, UsernameKey, username)
}
