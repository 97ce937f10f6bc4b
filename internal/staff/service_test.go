package staff

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/rbac"
	"github.com/slotwise/slotwise/internal/shared"
)

type memoryRoster struct {
	members map[string]map[int64]*Member
}

func newMemoryRoster() *memoryRoster {
	return &memoryRoster{members: map[string]map[int64]*Member{}}
}

func (r *memoryRoster) Get(_ context.Context, businessID string, userID int64) (*Member, error) {
	if m, ok := r.members[businessID][userID]; ok {
		clone := *m
		return &clone, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRoster) ListByBusiness(_ context.Context, businessID string, _ shared.Pagination) ([]Member, int, error) {
	var out []Member
	for _, m := range r.members[businessID] {
		out = append(out, *m)
	}
	return out, len(out), nil
}

func (r *memoryRoster) Insert(_ context.Context, m *Member) error {
	if r.members[m.BusinessID] == nil {
		r.members[m.BusinessID] = map[int64]*Member{}
	}
	clone := *m
	r.members[m.BusinessID][m.UserID] = &clone
	return nil
}

func (r *memoryRoster) UpdateRole(_ context.Context, businessID string, userID int64, role authz.Role) (int64, error) {
	m, ok := r.members[businessID][userID]
	if !ok {
		return 0, nil
	}
	m.Role = role
	return 1, nil
}

func (r *memoryRoster) Delete(_ context.Context, businessID string, userID int64) (int64, error) {
	if _, ok := r.members[businessID][userID]; !ok {
		return 0, nil
	}
	delete(r.members[businessID], userID)
	return 1, nil
}

type memoryRBAC struct {
	grants      []rbac.Grant
	memberships map[string]rbac.Membership
	nextGrantID int64
}

func newMemoryRBAC() *memoryRBAC {
	return &memoryRBAC{memberships: map[string]rbac.Membership{}, nextGrantID: 1}
}

func membershipKey(userID int64, businessID string) string {
	return fmt.Sprintf("%s/%d", businessID, userID)
}

func (r *memoryRBAC) GrantExists(_ context.Context, userID int64, permission authz.Permission, _ authz.Context) (bool, error) {
	for _, g := range r.grants {
		if g.UserID == userID && g.Permission == permission {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRBAC) MembershipExists(_ context.Context, userID int64, businessID string) (bool, error) {
	_, ok := r.memberships[membershipKey(userID, businessID)]
	return ok, nil
}

func (r *memoryRBAC) ListGrants(_ context.Context, userID int64) ([]rbac.Grant, error) {
	var out []rbac.Grant
	for _, g := range r.grants {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memoryRBAC) InsertGrant(_ context.Context, grant rbac.Grant) (rbac.Grant, error) {
	grant.ID = r.nextGrantID
	r.nextGrantID++
	r.grants = append(r.grants, grant)
	return grant, nil
}

func (r *memoryRBAC) DeleteGrant(_ context.Context, id int64) (int64, error) {
	for i, g := range r.grants {
		if g.ID == id {
			r.grants = append(r.grants[:i], r.grants[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memoryRBAC) InsertMembership(_ context.Context, m rbac.Membership) error {
	r.memberships[membershipKey(m.UserID, m.BusinessID)] = m
	return nil
}

func (r *memoryRBAC) DeleteMembership(_ context.Context, userID int64, businessID string) (int64, error) {
	key := membershipKey(userID, businessID)
	if _, ok := r.memberships[key]; !ok {
		return 0, nil
	}
	delete(r.memberships, key)
	return 1, nil
}

func newTestService() (*Service, *memoryRoster, *memoryRBAC) {
	roster := newMemoryRoster()
	store := newMemoryRBAC()
	return NewService(roster, rbac.NewService(store), nil), roster, store
}

func TestAddCreatesMembership(t *testing.T) {
	svc, _, store := newTestService()

	created, err := svc.Add(context.Background(), 1, Member{
		UserID:     42,
		BusinessID: "biz-1",
		Name:       "Dana Reeve",
		Email:      "dana@example.com",
		Role:       authz.RolePractitioner,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	ok, err := store.MembershipExists(context.Background(), 42, "biz-1")
	require.NoError(t, err)
	assert.True(t, ok, "roster add must create the membership the guards read")
}

type failingRoster struct {
	*memoryRoster
	insertErr error
}

func (r *failingRoster) Insert(_ context.Context, _ *Member) error {
	return r.insertErr
}

func TestAddRollsBackMembershipOnRosterFailure(t *testing.T) {
	roster := &failingRoster{memoryRoster: newMemoryRoster(), insertErr: errors.New("roster down")}
	store := newMemoryRBAC()
	svc := NewService(roster, rbac.NewService(store), nil)

	_, err := svc.Add(context.Background(), 1, Member{
		UserID:     42,
		BusinessID: "biz-1",
		Name:       "Dana Reeve",
		Email:      "dana@example.com",
		Role:       authz.RolePractitioner,
	})
	require.Error(t, err)

	ok, err := store.MembershipExists(context.Background(), 42, "biz-1")
	require.NoError(t, err)
	assert.False(t, ok, "a failed roster insert must not leave a membership behind")
}

func TestAddRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Add(context.Background(), 1, Member{
		UserID:     42,
		BusinessID: "biz-1",
		Name:       "Dana Reeve",
		Email:      "dana@example.com",
		Role:       authz.Role("wizard"),
	})
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestAssignRoleUpdatesBothSides(t *testing.T) {
	svc, roster, store := newTestService()
	_, err := svc.Add(context.Background(), 1, Member{
		UserID: 42, BusinessID: "biz-1", Name: "Dana Reeve", Email: "dana@example.com",
		Role: authz.RolePractitioner,
	})
	require.NoError(t, err)

	err = svc.AssignRole(context.Background(), 1, "biz-1", 42, authz.RoleLocationManager)
	require.NoError(t, err)

	m, err := roster.Get(context.Background(), "biz-1", 42)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleLocationManager, m.Role)

	ms, ok := store.memberships[membershipKey(42, "biz-1")]
	require.True(t, ok)
	assert.Equal(t, authz.RoleLocationManager, ms.Role)
}

func TestAssignRoleUnknownMember(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.AssignRole(context.Background(), 1, "biz-1", 99, authz.RoleScheduler)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRemoveDropsMembership(t *testing.T) {
	svc, _, store := newTestService()
	_, err := svc.Add(context.Background(), 1, Member{
		UserID: 42, BusinessID: "biz-1", Name: "Dana Reeve", Email: "dana@example.com",
		Role: authz.RolePractitioner,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), 1, "biz-1", 42))

	ok, err := store.MembershipExists(context.Background(), 42, "biz-1")
	require.NoError(t, err)
	assert.False(t, ok)

	err = svc.Remove(context.Background(), 1, "biz-1", 42)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGrantRejectsUnknownPermission(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GrantPermission(context.Background(), 1, rbac.Grant{
		UserID:     42,
		Permission: authz.Permission("galaxy.rule"),
		BusinessID: "biz-1",
	})
	assert.ErrorIs(t, err, ErrUnknownPermission)

	// Case and whitespace are normalized before the catalogue check.
	created, err := svc.GrantPermission(context.Background(), 1, rbac.Grant{
		UserID:     42,
		Permission: authz.Permission("  Staff.View "),
		BusinessID: "biz-1",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.PermStaffView, created.Permission)
}

func TestGrantLifecycle(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.GrantPermission(context.Background(), 1, rbac.Grant{
		UserID:     42,
		Permission: shared.PermCalendarManage,
		BusinessID: "biz-1",
		LocationID: "loc-2",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	grants, err := svc.Grants(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, shared.PermCalendarManage, grants[0].Permission)

	require.NoError(t, svc.RevokePermission(context.Background(), 1, "biz-1", created.ID))
	err = svc.RevokePermission(context.Background(), 1, "biz-1", created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
