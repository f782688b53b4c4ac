package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated principal extracted from an access
// token, carried through the request context.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

type contextKey struct{}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext extracts the authenticated identity, reporting
// whether one was set.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
