package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	grants  map[Permission]bool
	erring  map[Permission]error
	access  map[string]bool
	accErr  error
	checked []Permission
	scopes  []Context
}

func (s *stubResolver) HasPermission(ctx context.Context, userID int64, permission Permission, scope Context) (bool, error) {
	s.checked = append(s.checked, permission)
	s.scopes = append(s.scopes, scope)
	if err, ok := s.erring[permission]; ok {
		return false, err
	}
	return s.grants[permission], nil
}

func (s *stubResolver) HasAccessToBusiness(ctx context.Context, userID int64, businessID string) (bool, error) {
	if s.accErr != nil {
		return false, s.accErr
	}
	return s.access[businessID], nil
}

func permRegistry(op string, req PermissionRequirement) *Registry {
	reg := NewRegistry()
	reg.Declare(op, req)
	return reg
}

func TestPermissionGuardPublicOperation(t *testing.T) {
	guard := NewPermissionGuard(NewRegistry(), &stubResolver{}, nil)
	assert.NoError(t, guard.Authorize(context.Background(), Access{Operation: "galleries.list"}))
}

func TestPermissionGuardRequiresIdentity(t *testing.T) {
	reg := permRegistry("staff.assign_role", PermissionRequirement{Permissions: []Permission{"staff.manage"}})
	guard := NewPermissionGuard(reg, &stubResolver{}, nil)

	err := guard.Authorize(context.Background(), Access{Operation: "staff.assign_role"})
	require.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestPermissionGuardAnyMode(t *testing.T) {
	reg := permRegistry("op.any", PermissionRequirement{
		Permissions: []Permission{"p1", "p2"},
		RequireAll:  false,
	})
	resolver := &stubResolver{grants: map[Permission]bool{"p1": true}}
	guard := NewPermissionGuard(reg, resolver, nil)

	err := guard.Authorize(context.Background(), Access{Operation: "op.any", Identity: activeIdentity(RoleScheduler, "biz-123")})
	assert.NoError(t, err)
	// OR short-circuits on the first grant.
	assert.Equal(t, []Permission{"p1"}, resolver.checked)
}

func TestPermissionGuardAllModeDenies(t *testing.T) {
	// {p1 true, p2 false} with requireAll fails, naming both permissions.
	reg := permRegistry("staff.assign_role", PermissionRequirement{
		Permissions: []Permission{"staff.manage", "roles.assign"},
		RequireAll:  true,
	})
	resolver := &stubResolver{grants: map[Permission]bool{"staff.manage": true}}
	guard := NewPermissionGuard(reg, resolver, nil)

	err := guard.Authorize(context.Background(), Access{Operation: "staff.assign_role", Identity: activeIdentity(RoleBusinessAdmin, "biz-123")})
	var permErr *InsufficientPermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, []Permission{"staff.manage", "roles.assign"}, permErr.Checked)
	assert.Contains(t, permErr.Error(), "staff.manage")
	assert.Contains(t, permErr.Error(), "roles.assign")
}

func TestPermissionGuardAllModeAllows(t *testing.T) {
	reg := permRegistry("staff.assign_role", PermissionRequirement{
		Permissions: []Permission{"staff.manage", "roles.assign"},
		RequireAll:  true,
	})
	resolver := &stubResolver{grants: map[Permission]bool{"staff.manage": true, "roles.assign": true}}
	guard := NewPermissionGuard(reg, resolver, nil)

	err := guard.Authorize(context.Background(), Access{Operation: "staff.assign_role", Identity: activeIdentity(RoleBusinessAdmin, "biz-123")})
	assert.NoError(t, err)
}

func TestPermissionGuardOrModeDeniesWhenAllFalse(t *testing.T) {
	reg := permRegistry("op.any", PermissionRequirement{
		Permissions: []Permission{"p1", "p2"},
	})
	resolver := &stubResolver{}
	guard := NewPermissionGuard(reg, resolver, nil)

	err := guard.Authorize(context.Background(), Access{Operation: "op.any", Identity: activeIdentity(RoleScheduler, "biz-123")})
	var permErr *InsufficientPermissionError
	require.ErrorAs(t, err, &permErr)
	// The deny names every permission that was checked.
	assert.Equal(t, []Permission{"p1", "p2"}, permErr.Checked)
}

func TestPermissionGuardFailsClosedOnResolverError(t *testing.T) {
	reg := permRegistry("op.all", PermissionRequirement{
		Permissions: []Permission{"p1", "p2"},
		RequireAll:  true,
	})
	resolver := &stubResolver{
		grants: map[Permission]bool{"p1": true},
		erring: map[Permission]error{"p2": errors.New("resolver down")},
	}
	guard := NewPermissionGuard(reg, resolver, nil)

	err := guard.Authorize(context.Background(), Access{Operation: "op.all", Identity: activeIdentity(RoleScheduler, "biz-123")})
	var permErr *InsufficientPermissionError
	require.ErrorAs(t, err, &permErr, "resolver outage must surface as a permission denial")
	assert.NotContains(t, err.Error(), "resolver down", "resolver internals never leak to the caller")
}

func TestPermissionGuardScopePriority(t *testing.T) {
	// The declared hint pins the business; the rest comes from the request.
	reg := permRegistry("op.scoped", PermissionRequirement{
		Permissions: []Permission{"p1"},
		Context:     Context{BusinessID: "biz-pinned"},
	})
	resolver := &stubResolver{grants: map[Permission]bool{"p1": true}}
	guard := NewPermissionGuard(reg, resolver, nil)

	err := guard.Authorize(context.Background(), Access{
		Operation: "op.scoped",
		Identity:  activeIdentity(RoleScheduler, "biz-123"),
		Target:    Context{BusinessID: "biz-route", LocationID: "loc-9"},
	})
	require.NoError(t, err)
	require.Len(t, resolver.scopes, 1)
	assert.Equal(t, "biz-pinned", resolver.scopes[0].BusinessID)
	assert.Equal(t, "loc-9", resolver.scopes[0].LocationID)
}

func TestMinLevelGuard(t *testing.T) {
	guard := MinLevelGuard{Level: 40}

	require.ErrorIs(t, guard.Authorize(context.Background(), Access{}), ErrAuthenticationRequired)

	err := guard.Authorize(context.Background(), Access{Identity: activeIdentity(RoleReceptionist, "biz-123")})
	var lvlErr *InsufficientLevelError
	require.ErrorAs(t, err, &lvlErr)
	assert.Equal(t, 40, lvlErr.Required)
	assert.Equal(t, 20, lvlErr.Actual)

	assert.NoError(t, guard.Authorize(context.Background(), Access{Identity: activeIdentity(RoleJuniorPractitioner, "biz-123")}))
	assert.NoError(t, guard.Authorize(context.Background(), Access{Identity: activeIdentity(RoleOwner, "biz-123")}))
}

func TestBusinessAccessGuard(t *testing.T) {
	resolver := &stubResolver{access: map[string]bool{"biz-123": true}}
	guard := NewBusinessAccessGuard(resolver, nil)

	// No target business, nothing to check.
	assert.NoError(t, guard.Authorize(context.Background(), Access{}))

	require.ErrorIs(t,
		guard.Authorize(context.Background(), Access{Target: Context{BusinessID: "biz-123"}}),
		ErrAuthenticationRequired)

	assert.NoError(t, guard.Authorize(context.Background(), Access{
		Identity: activeIdentity(RoleAssistant, "biz-123"),
		Target:   Context{BusinessID: "biz-123"},
	}))

	require.ErrorIs(t, guard.Authorize(context.Background(), Access{
		Identity: activeIdentity(RoleAssistant, "biz-123"),
		Target:   Context{BusinessID: "biz-456"},
	}), ErrCrossTenantAccess)

	// Platform tiers skip the membership lookup entirely.
	assert.NoError(t, guard.Authorize(context.Background(), Access{
		Identity: activeIdentity(RolePlatformAdmin, "platform"),
		Target:   Context{BusinessID: "biz-456"},
	}))
}

func TestBusinessAccessGuardFailsClosed(t *testing.T) {
	resolver := &stubResolver{accErr: errors.New("store unavailable")}
	guard := NewBusinessAccessGuard(resolver, nil)

	err := guard.Authorize(context.Background(), Access{
		Identity: activeIdentity(RoleAssistant, "biz-123"),
		Target:   Context{BusinessID: "biz-123"},
	})
	require.ErrorIs(t, err, ErrCrossTenantAccess)
}
