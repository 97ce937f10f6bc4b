package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, businessID string, userID int64) (*Member, error)
	ListByBusiness(ctx context.Context, businessID string, page shared.Pagination) ([]Member, int, error)
	Insert(ctx context.Context, m *Member) error
	UpdateRole(ctx context.Context, businessID string, userID int64, role authz.Role) (int64, error)
	Delete(ctx context.Context, businessID string, userID int64) (int64, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const memberColumns = `user_id, business_id, name, email, title, role, is_active, created_at, updated_at`

func (r *PGRepository) Get(ctx context.Context, businessID string, userID int64) (*Member, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM staff_members WHERE business_id = $1 AND user_id = $2`,
		businessID, userID)
	return scanMember(row)
}

func (r *PGRepository) ListByBusiness(ctx context.Context, businessID string, page shared.Pagination) ([]Member, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM staff_members WHERE business_id = $1`, businessID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM staff_members
		 WHERE business_id = $1
		 ORDER BY name
		 LIMIT $2 OFFSET $3`,
		businessID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, *m)
	}
	return members, total, rows.Err()
}

func (r *PGRepository) Insert(ctx context.Context, m *Member) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO staff_members (user_id, business_id, name, email, title, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.UserID, m.BusinessID, m.Name, m.Email, m.Title, string(m.Role), m.IsActive, m.CreatedAt, m.UpdatedAt)
	return err
}

func (r *PGRepository) UpdateRole(ctx context.Context, businessID string, userID int64, role authz.Role) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE staff_members SET role = $1, updated_at = NOW() WHERE business_id = $2 AND user_id = $3`,
		string(role), businessID, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGRepository) Delete(ctx context.Context, businessID string, userID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM staff_members WHERE business_id = $1 AND user_id = $2`,
		businessID, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	var role string
	err := row.Scan(&m.UserID, &m.BusinessID, &m.Name, &m.Email, &m.Title, &role, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	m.Role = authz.Role(role)
	return &m, nil
}
