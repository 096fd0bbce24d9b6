package auth

import "context"

type ctxKey string

const userKey ctxKey = "userClaims"

// WithClaims attaches verified access-token claims to the request context.
func WithClaims(ctx context.Context, c *AccessClaims) context.Context {
	return context.WithValue(ctx, userKey, c)
}

// FromContext returns the claims attached by the authentication guard, or nil
// when the request was not authenticated with a bearer token.
func FromContext(ctx context.Context) *AccessClaims {
	if v, ok := ctx.Value(userKey).(*AccessClaims); ok {
		return v
	}
	return nil
}

// UserID is a shorthand for the authenticated user's id, zero when absent.
func UserID(ctx context.Context) uint {
	if c := FromContext(ctx); c != nil {
		return c.UserID
	}
	return 0
}
