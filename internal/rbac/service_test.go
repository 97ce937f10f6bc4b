package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise/internal/authz"
)

type mockRepo struct {
	grants      []Grant
	memberships []Membership
	nextID      int64
}

func (m *mockRepo) GrantExists(ctx context.Context, userID int64, permission authz.Permission, scope authz.Context) (bool, error) {
	for _, g := range m.grants {
		if g.UserID != userID || g.Permission != permission {
			continue
		}
		if g.BusinessID != "" && g.BusinessID != scope.BusinessID {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (m *mockRepo) MembershipExists(ctx context.Context, userID int64, businessID string) (bool, error) {
	for _, mb := range m.memberships {
		if mb.UserID == userID && mb.BusinessID == businessID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) ListGrants(ctx context.Context, userID int64) ([]Grant, error) {
	var out []Grant
	for _, g := range m.grants {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockRepo) InsertGrant(ctx context.Context, grant Grant) (Grant, error) {
	m.nextID++
	grant.ID = m.nextID
	m.grants = append(m.grants, grant)
	return grant, nil
}

func (m *mockRepo) DeleteGrant(ctx context.Context, id int64) (int64, error) {
	for i, g := range m.grants {
		if g.ID == id {
			m.grants = append(m.grants[:i], m.grants[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockRepo) InsertMembership(ctx context.Context, mb Membership) error {
	m.memberships = append(m.memberships, mb)
	return nil
}

func (m *mockRepo) DeleteMembership(ctx context.Context, userID int64, businessID string) (int64, error) {
	for i, mb := range m.memberships {
		if mb.UserID == userID && mb.BusinessID == businessID {
			m.memberships = append(m.memberships[:i], m.memberships[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func TestHasPermissionScoped(t *testing.T) {
	repo := &mockRepo{grants: []Grant{
		{ID: 1, UserID: 5, Permission: "staff.manage", BusinessID: "biz-123"},
		{ID: 2, UserID: 5, Permission: "booking.any"},
	}}
	svc := NewService(repo)

	ok, err := svc.HasPermission(context.Background(), 5, "staff.manage", authz.Context{BusinessID: "biz-123"})
	require.NoError(t, err)
	assert.True(t, ok)

	// Tenant-scoped grant does not leak into another business.
	ok, err = svc.HasPermission(context.Background(), 5, "staff.manage", authz.Context{BusinessID: "biz-456"})
	require.NoError(t, err)
	assert.False(t, ok)

	// Platform-wide grant applies everywhere.
	ok, err = svc.HasPermission(context.Background(), 5, "booking.any", authz.Context{BusinessID: "biz-456"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasPermissionNormalizes(t *testing.T) {
	repo := &mockRepo{grants: []Grant{{ID: 1, UserID: 5, Permission: "staff.manage"}}}
	svc := NewService(repo)

	ok, err := svc.HasPermission(context.Background(), 5, "  STAFF.MANAGE ", authz.Context{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasPermission(context.Background(), 5, "   ", authz.Context{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrantValidation(t *testing.T) {
	svc := NewService(&mockRepo{})

	_, err := svc.Grant(context.Background(), Grant{UserID: 5})
	assert.Error(t, err)

	_, err = svc.Grant(context.Background(), Grant{Permission: "staff.manage"})
	assert.Error(t, err)

	g, err := svc.Grant(context.Background(), Grant{UserID: 5, Permission: "Staff.Manage"})
	require.NoError(t, err)
	assert.Equal(t, authz.Permission("staff.manage"), g.Permission)
	assert.NotZero(t, g.ID)
}

func TestRevokeNotFound(t *testing.T) {
	svc := NewService(&mockRepo{})
	assert.ErrorIs(t, svc.Revoke(context.Background(), 99), ErrNotFound)
}

func TestMembershipLifecycle(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	err := svc.AddMembership(context.Background(), Membership{UserID: 5, BusinessID: "biz-123", Role: authz.RoleReceptionist})
	require.NoError(t, err)

	ok, err := svc.HasAccessToBusiness(context.Background(), 5, "biz-123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasAccessToBusiness(context.Background(), 5, "")
	require.NoError(t, err)
	assert.False(t, ok, "empty business never matches")

	require.NoError(t, svc.RemoveMembership(context.Background(), 5, "biz-123"))
	assert.ErrorIs(t, svc.RemoveMembership(context.Background(), 5, "biz-123"), ErrNotFound)
}

func TestAddMembershipRejectsUnknownRole(t *testing.T) {
	svc := NewService(&mockRepo{})
	err := svc.AddMembership(context.Background(), Membership{UserID: 5, BusinessID: "biz-123", Role: "janitor"})
	assert.Error(t, err)
}
