package authz

import (
	"context"
	"log/slog"
)

// Access bundles everything a guard needs to decide a single request: the
// operation being invoked, the caller (nil when unauthenticated) and the
// tenant scope extracted from the request by the transport layer.
type Access struct {
	Operation string
	Identity  *Identity
	Target    Context
}

// Guard decides a single request. A nil return means allow; every deny is one
// of the error kinds in errors.go.
type Guard interface {
	Authorize(ctx context.Context, access Access) error
}

// RoleGuard enforces role-list declarations, including account health and
// multi-tenant isolation. It ignores operations declared with permission
// requirements; those belong to PermissionGuard.
type RoleGuard struct {
	registry *Registry
	logger   *slog.Logger
}

// NewRoleGuard constructs a RoleGuard reading declarations from registry.
func NewRoleGuard(registry *Registry, logger *slog.Logger) *RoleGuard {
	return &RoleGuard{registry: registry, logger: logger}
}

// Authorize walks the role decision ladder: no declaration means public, then
// identity presence, account health, tenant isolation and finally role
// sufficiency by direct membership or hierarchy dominance.
func (g *RoleGuard) Authorize(ctx context.Context, access Access) error {
	req, ok := g.registry.Lookup(access.Operation).(RoleRequirement)
	if !ok || len(req.Roles) == 0 {
		return nil
	}

	id := access.Identity
	if id == nil {
		g.deny(access, req, ErrAuthenticationRequired)
		return ErrAuthenticationRequired
	}
	if !id.IsActive {
		g.deny(access, req, ErrAccountInactive)
		return ErrAccountInactive
	}
	if !id.IsVerified {
		g.deny(access, req, ErrAccountUnverified)
		return ErrAccountUnverified
	}

	// A request pinned to another tenant's business is rejected before the
	// role is even considered, unless the caller is platform-exempt.
	if target := access.Target.BusinessID; target != "" && target != id.BusinessID && !TenantExempt(id.Role) {
		g.deny(access, req, ErrCrossTenantAccess)
		return ErrCrossTenantAccess
	}

	if !matchesRole(id.Role, req.Roles) && !Dominates(id.Role, req.Roles) {
		err := &InsufficientRoleError{Required: req.Roles}
		g.deny(access, req, err)
		return err
	}

	g.allow(access, req)
	return nil
}

func matchesRole(role Role, required []Role) bool {
	for _, r := range required {
		if role == r {
			return true
		}
	}
	return false
}

func (g *RoleGuard) allow(access Access, req RoleRequirement) {
	if g.logger == nil {
		return
	}
	g.logger.Debug("authz allow", decisionAttrs(access, slog.Any("required_roles", req.Roles))...)
}

func (g *RoleGuard) deny(access Access, req RoleRequirement, err error) {
	if g.logger == nil {
		return
	}
	attrs := decisionAttrs(access, slog.Any("required_roles", req.Roles))
	attrs = append(attrs, slog.Any("error", err))
	g.logger.Warn("authz deny", attrs...)
}

func decisionAttrs(access Access, requirement slog.Attr) []any {
	attrs := []any{
		slog.String("operation", access.Operation),
		slog.String("target_business", access.Target.BusinessID),
		requirement,
	}
	if id := access.Identity; id != nil {
		attrs = append(attrs,
			slog.Int64("user_id", id.ID),
			slog.String("role", string(id.Role)),
		)
	}
	return attrs
}
