package authz

import "context"

// RequireIdentity is the authentication gate: it checks only that a healthy
// identity is attached to the request. Chains place it ahead of every other
// guard so a missing login is always reported as such, never as a role or
// permission failure.
type RequireIdentity struct{}

// Authorize rejects absent, inactive or unverified identities.
func (RequireIdentity) Authorize(ctx context.Context, access Access) error {
	id := access.Identity
	if id == nil {
		return ErrAuthenticationRequired
	}
	if !id.IsActive {
		return ErrAccountInactive
	}
	if !id.IsVerified {
		return ErrAccountUnverified
	}
	return nil
}

// Chain evaluates guards in order and stops at the first deny.
type Chain struct {
	guards []Guard
}

// NewChain composes guards. Any RequireIdentity in the list is moved to the
// front so authentication precedes authorization regardless of call-site
// ordering.
func NewChain(guards ...Guard) *Chain {
	ordered := make([]Guard, 0, len(guards))
	rest := make([]Guard, 0, len(guards))
	for _, g := range guards {
		if _, ok := g.(RequireIdentity); ok {
			ordered = append(ordered, g)
			continue
		}
		rest = append(rest, g)
	}
	return &Chain{guards: append(ordered, rest...)}
}

// Authorize runs the chain, short-circuiting on the first deny.
func (c *Chain) Authorize(ctx context.Context, access Access) error {
	for _, g := range c.guards {
		if err := g.Authorize(ctx, access); err != nil {
			return err
		}
	}
	return nil
}
