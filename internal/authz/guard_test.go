package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeIdentity(role Role, businessID string) *Identity {
	return &Identity{
		ID:         7,
		Email:      "user@example.test",
		Role:       role,
		BusinessID: businessID,
		IsActive:   true,
		IsVerified: true,
	}
}

func roleRegistry(op string, roles ...Role) *Registry {
	reg := NewRegistry()
	reg.Declare(op, RoleRequirement{Roles: roles})
	return reg
}

func TestRoleGuardPublicOperation(t *testing.T) {
	guard := NewRoleGuard(NewRegistry(), nil)

	// No declaration allows every identity state, including none at all.
	assert.NoError(t, guard.Authorize(context.Background(), Access{Operation: "businesses.get"}))
	assert.NoError(t, guard.Authorize(context.Background(), Access{
		Operation: "businesses.get",
		Identity:  &Identity{Role: RoleGuestClient},
	}))
}

func TestRoleGuardEmptyRoleListIsPublic(t *testing.T) {
	guard := NewRoleGuard(roleRegistry("op.empty"), nil)
	assert.NoError(t, guard.Authorize(context.Background(), Access{Operation: "op.empty"}))
}

func TestRoleGuardAuthenticationPrecedesAuthorization(t *testing.T) {
	guard := NewRoleGuard(roleRegistry("staff.list", RoleReceptionist), nil)

	err := guard.Authorize(context.Background(), Access{Operation: "staff.list"})
	require.ErrorIs(t, err, ErrAuthenticationRequired)
	assert.True(t, IsAuthentication(err))
}

func TestRoleGuardAccountHealth(t *testing.T) {
	guard := NewRoleGuard(roleRegistry("staff.list", RoleReceptionist), nil)

	inactive := activeIdentity(RoleOwner, "biz-123")
	inactive.IsActive = false
	err := guard.Authorize(context.Background(), Access{Operation: "staff.list", Identity: inactive})
	require.ErrorIs(t, err, ErrAccountInactive)
	assert.False(t, IsAuthentication(err), "health failures are forbidden, not unauthenticated")

	unverified := activeIdentity(RoleOwner, "biz-123")
	unverified.IsVerified = false
	err = guard.Authorize(context.Background(), Access{Operation: "staff.list", Identity: unverified})
	require.ErrorIs(t, err, ErrAccountUnverified)
}

func TestRoleGuardHierarchyDominance(t *testing.T) {
	// Business owner (80) outranks the required receptionist (20).
	guard := NewRoleGuard(roleRegistry("staff.list", RoleReceptionist), nil)

	err := guard.Authorize(context.Background(), Access{
		Operation: "staff.list",
		Identity:  activeIdentity(RoleOwner, "biz-123"),
		Target:    Context{BusinessID: "biz-123"},
	})
	assert.NoError(t, err)
}

func TestRoleGuardInsufficientRole(t *testing.T) {
	// Receptionist (20) fails a business_admin (70) requirement.
	guard := NewRoleGuard(roleRegistry("businesses.update", RoleBusinessAdmin), nil)

	err := guard.Authorize(context.Background(), Access{
		Operation: "businesses.update",
		Identity:  activeIdentity(RoleReceptionist, "biz-123"),
		Target:    Context{BusinessID: "biz-123"},
	})
	var roleErr *InsufficientRoleError
	require.ErrorAs(t, err, &roleErr)
	assert.Equal(t, []Role{RoleBusinessAdmin}, roleErr.Required)
	assert.Contains(t, roleErr.Error(), "business_admin")
}

func TestRoleGuardDirectMembership(t *testing.T) {
	guard := NewRoleGuard(roleRegistry("appointments.book", RoleRegularClient), nil)

	err := guard.Authorize(context.Background(), Access{
		Operation: "appointments.book",
		Identity:  activeIdentity(RoleRegularClient, "biz-123"),
	})
	assert.NoError(t, err)
}

func TestRoleGuardTenantIsolation(t *testing.T) {
	// Role alone would pass, but the target business differs from the caller's.
	guard := NewRoleGuard(roleRegistry("businesses.update", RoleBusinessAdmin), nil)

	err := guard.Authorize(context.Background(), Access{
		Operation: "businesses.update",
		Identity:  activeIdentity(RoleBusinessAdmin, "biz-123"),
		Target:    Context{BusinessID: "biz-456"},
	})
	require.ErrorIs(t, err, ErrCrossTenantAccess)
}

func TestRoleGuardPlatformExemption(t *testing.T) {
	guard := NewRoleGuard(roleRegistry("businesses.update", RoleBusinessAdmin), nil)

	for _, role := range []Role{RoleSuperAdmin, RolePlatformAdmin} {
		err := guard.Authorize(context.Background(), Access{
			Operation: "businesses.update",
			Identity:  activeIdentity(role, "platform"),
			Target:    Context{BusinessID: "biz-456"},
		})
		assert.NoError(t, err, "role %s crosses tenants", role)
	}
}

func TestRoleGuardSameTenantPasses(t *testing.T) {
	guard := NewRoleGuard(roleRegistry("businesses.update", RoleBusinessAdmin), nil)

	err := guard.Authorize(context.Background(), Access{
		Operation: "businesses.update",
		Identity:  activeIdentity(RoleBusinessAdmin, "biz-123"),
		Target:    Context{BusinessID: "biz-123"},
	})
	assert.NoError(t, err)
}

func TestRoleGuardIgnoresPermissionDeclarations(t *testing.T) {
	reg := NewRegistry()
	reg.Declare("staff.assign_role", PermissionRequirement{Permissions: []Permission{"staff.manage"}})
	guard := NewRoleGuard(reg, nil)

	// Permission-set declarations are PermissionGuard's concern.
	assert.NoError(t, guard.Authorize(context.Background(), Access{Operation: "staff.assign_role"}))
}
