package rbac

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotwise/slotwise/internal/authz"
)

// Repository defines persistence operations for grants and memberships.
type Repository interface {
	GrantExists(ctx context.Context, userID int64, permission authz.Permission, scope authz.Context) (bool, error)
	MembershipExists(ctx context.Context, userID int64, businessID string) (bool, error)
	ListGrants(ctx context.Context, userID int64) ([]Grant, error)
	InsertGrant(ctx context.Context, grant Grant) (Grant, error)
	DeleteGrant(ctx context.Context, id int64) (int64, error)
	InsertMembership(ctx context.Context, m Membership) error
	DeleteMembership(ctx context.Context, userID int64, businessID string) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GrantExists reports whether a grant matches the permission in the scope.
// Scope columns match when the grant leaves them open or pins the same value.
func (r *PGRepository) GrantExists(ctx context.Context, userID int64, permission authz.Permission, scope authz.Context) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM permission_grants
			WHERE user_id = $1
			  AND permission = $2
			  AND (business_id = '' OR business_id = $3)
			  AND (location_id = '' OR location_id = $4 OR $4 = '')
			  AND (department_id = '' OR department_id = $5 OR $5 = '')
		)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, string(permission), scope.BusinessID, scope.LocationID, scope.DepartmentID).Scan(&exists)
	return exists, err
}

// MembershipExists reports whether the user belongs to the business.
func (r *PGRepository) MembershipExists(ctx context.Context, userID int64, businessID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM business_members WHERE user_id = $1 AND business_id = $2)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, businessID).Scan(&exists)
	return exists, err
}

// ListGrants returns every grant held by the user.
func (r *PGRepository) ListGrants(ctx context.Context, userID int64) ([]Grant, error) {
	const query = `
		SELECT id, user_id, permission, business_id, location_id, department_id, created_at
		FROM permission_grants WHERE user_id = $1 ORDER BY permission`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []Grant
	for rows.Next() {
		var g Grant
		var perm string
		if err := rows.Scan(&g.ID, &g.UserID, &perm, &g.BusinessID, &g.LocationID, &g.DepartmentID, &g.CreatedAt); err != nil {
			return nil, err
		}
		g.Permission = authz.Permission(perm)
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// InsertGrant persists a grant and returns it with its assigned ID.
func (r *PGRepository) InsertGrant(ctx context.Context, grant Grant) (Grant, error) {
	const query = `
		INSERT INTO permission_grants (user_id, permission, business_id, location_id, department_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		grant.UserID, string(grant.Permission), grant.BusinessID, grant.LocationID, grant.DepartmentID,
	).Scan(&grant.ID, &grant.CreatedAt)
	return grant, err
}

// DeleteGrant removes a grant by ID, returning the affected row count.
func (r *PGRepository) DeleteGrant(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permission_grants WHERE id = $1`, id)
	return tag.RowsAffected(), err
}

// InsertMembership persists a business membership.
func (r *PGRepository) InsertMembership(ctx context.Context, m Membership) error {
	const query = `
		INSERT INTO business_members (user_id, business_id, role, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, business_id) DO UPDATE SET role = EXCLUDED.role`
	_, err := r.pool.Exec(ctx, query, m.UserID, m.BusinessID, string(m.Role))
	return err
}

// DeleteMembership removes a membership, returning the affected row count.
func (r *PGRepository) DeleteMembership(ctx context.Context, userID int64, businessID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM business_members WHERE user_id = $1 AND business_id = $2`, userID, businessID)
	return tag.RowsAffected(), err
}

var _ Repository = (*PGRepository)(nil)
