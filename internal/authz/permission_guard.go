package authz

import (
	"context"
	"log/slog"
)

// PermissionResolver answers fine-grained capability questions. It lives
// outside this package (backed by the grants store); any error it returns is
// treated as "no" by the guards, never surfaced to the caller.
type PermissionResolver interface {
	HasPermission(ctx context.Context, userID int64, permission Permission, scope Context) (bool, error)
	HasAccessToBusiness(ctx context.Context, userID int64, businessID string) (bool, error)
}

// PermissionGuard enforces permission-set declarations. It combines resolver
// answers with AND or OR semantics and fails closed on resolver errors.
type PermissionGuard struct {
	registry *Registry
	resolver PermissionResolver
	logger   *slog.Logger
}

// NewPermissionGuard constructs a PermissionGuard.
func NewPermissionGuard(registry *Registry, resolver PermissionResolver, logger *slog.Logger) *PermissionGuard {
	return &PermissionGuard{registry: registry, resolver: resolver, logger: logger}
}

// Authorize resolves the declared permissions against the effective scope.
// The declaration's context hints win over what the transport extracted from
// the request, field by field.
func (g *PermissionGuard) Authorize(ctx context.Context, access Access) error {
	req, ok := g.registry.Lookup(access.Operation).(PermissionRequirement)
	if !ok || len(req.Permissions) == 0 {
		return nil
	}

	id := access.Identity
	if id == nil {
		return ErrAuthenticationRequired
	}

	scope := req.Context.merge(access.Target)

	denied := &InsufficientPermissionError{Checked: req.Permissions, RequireAll: req.RequireAll}
	for _, perm := range req.Permissions {
		granted, err := g.resolver.HasPermission(ctx, id.ID, perm, scope)
		if err != nil {
			// A resolver outage must read as "no", never as an escaping 500.
			g.logResolverFailure(access, perm, err)
			granted = false
		}
		if req.RequireAll && !granted {
			g.logDeny(access, req, denied)
			return denied
		}
		if !req.RequireAll && granted {
			g.logAllow(access, req)
			return nil
		}
	}
	if req.RequireAll {
		g.logAllow(access, req)
		return nil
	}
	g.logDeny(access, req, denied)
	return denied
}

func (g *PermissionGuard) logAllow(access Access, req PermissionRequirement) {
	if g.logger == nil {
		return
	}
	g.logger.Debug("authz allow", decisionAttrs(access, slog.Any("required_permissions", req.Permissions))...)
}

func (g *PermissionGuard) logDeny(access Access, req PermissionRequirement, err error) {
	if g.logger == nil {
		return
	}
	attrs := decisionAttrs(access, slog.Any("required_permissions", req.Permissions))
	attrs = append(attrs, slog.Bool("require_all", req.RequireAll), slog.Any("error", err))
	g.logger.Warn("authz deny", attrs...)
}

func (g *PermissionGuard) logResolverFailure(access Access, perm Permission, err error) {
	if g.logger == nil {
		return
	}
	attrs := decisionAttrs(access, slog.String("permission", string(perm)))
	attrs = append(attrs, slog.Any("error", err))
	g.logger.Error("authz permission resolver failed", attrs...)
}

// MinLevelGuard allows callers whose role ranks at or above a fixed numeric
// threshold. Used where the required rank does not correspond to a role list.
// Tenant isolation is not its concern; compose it with the guards that do.
type MinLevelGuard struct {
	Level int
}

// Authorize compares the caller's hierarchy level against the threshold.
func (g MinLevelGuard) Authorize(ctx context.Context, access Access) error {
	id := access.Identity
	if id == nil {
		return ErrAuthenticationRequired
	}
	if actual := LevelOf(id.Role); actual < g.Level {
		return &InsufficientLevelError{Required: g.Level, Actual: actual}
	}
	return nil
}

// BusinessAccessGuard enforces plain tenant membership: the caller must have
// some access to the business targeted by the request, whatever their role.
type BusinessAccessGuard struct {
	resolver PermissionResolver
	logger   *slog.Logger
}

// NewBusinessAccessGuard constructs a BusinessAccessGuard.
func NewBusinessAccessGuard(resolver PermissionResolver, logger *slog.Logger) *BusinessAccessGuard {
	return &BusinessAccessGuard{resolver: resolver, logger: logger}
}

// Authorize delegates the membership question to the resolver, failing closed
// on resolver errors. Requests that do not target a business pass through.
func (g *BusinessAccessGuard) Authorize(ctx context.Context, access Access) error {
	target := access.Target.BusinessID
	if target == "" {
		return nil
	}
	id := access.Identity
	if id == nil {
		return ErrAuthenticationRequired
	}
	if TenantExempt(id.Role) {
		return nil
	}
	ok, err := g.resolver.HasAccessToBusiness(ctx, id.ID, target)
	if err != nil {
		if g.logger != nil {
			g.logger.Error("authz business access resolver failed", decisionAttrs(access, slog.Any("error", err))...)
		}
		ok = false
	}
	if !ok {
		if g.logger != nil {
			g.logger.Warn("authz deny", decisionAttrs(access, slog.String("check", "business_access"))...)
		}
		return ErrCrossTenantAccess
	}
	return nil
}
