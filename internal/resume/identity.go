package resume

import "context"

type userKey struct{}

// WithUser binds the caller identity to ctx.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFrom returns the bound identity or ErrNotAuthenticated.
func UserFrom(ctx context.Context) (string, error) {
	id, _ := ctx.Value(userKey{}).(string)
	if id == "" {
		return "", ErrNotAuthenticated
	}
	return id, nil
}
