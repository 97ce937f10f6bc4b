package authz

import "context"

// Identity is the authenticated actor attached to a request by the
// authentication layer before any guard runs. It is either fully populated or
// absent from the context; guards never see partial identities.
type Identity struct {
	ID         int64
	Email      string
	Role       Role
	BusinessID string
	IsActive   bool
	IsVerified bool
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity, or nil when unauthenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
