package auth

import (
	"context"

	"github.com/rhuss/artikel/pkg/api"
)

// userKey is a private type for the current-user context key.
type userKey struct{}

// SetUser stores the authenticated user in the context.
func SetUser(ctx context.Context, u *api.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext retrieves the authenticated user. Returns nil on
// public routes where the guard did not run.
func UserFromContext(ctx context.Context) *api.User {
	if u, ok := ctx.Value(userKey{}).(*api.User); ok {
		return u
	}
	return nil
}
