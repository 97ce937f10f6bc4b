package businesses

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/platform/db"
	"github.com/slotwise/slotwise/internal/shared"
)

// ErrDuplicateName indicates a business name collision.
var ErrDuplicateName = errors.New("businesses: name already taken")

// Repository defines persistence operations for businesses.
type Repository interface {
	Get(ctx context.Context, id string) (*Business, error)
	List(ctx context.Context, page shared.Pagination) ([]Business, int, error)
	Insert(ctx context.Context, b Business, ownerID int64) (Business, error)
	Update(ctx context.Context, b Business) (Business, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const businessColumns = `id, name, sector, timezone, phone, email, is_active, created_at, updated_at`

// Get fetches a business by ID.
func (r *PGRepository) Get(ctx context.Context, id string) (*Business, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	return scanBusiness(row)
}

// List returns a page of businesses plus the total count.
func (r *PGRepository) List(ctx context.Context, page shared.Pagination) ([]Business, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM businesses`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+businessColumns+` FROM businesses ORDER BY name LIMIT $1 OFFSET $2`,
		page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}

// Insert persists a new business and enrols its creator as owner. Both rows
// land in one transaction so a half-provisioned tenant cannot exist.
func (r *PGRepository) Insert(ctx context.Context, b Business, ownerID int64) (Business, error) {
	const insertBusiness = `
		INSERT INTO businesses (id, name, sector, timezone, phone, email, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at`
	const insertOwner = `
		INSERT INTO business_members (user_id, business_id, role, created_at)
		VALUES ($1, $2, $3, NOW())`
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertBusiness, b.ID, b.Name, b.Sector, b.Timezone, b.Phone, b.Email, b.IsActive).
			Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insertOwner, ownerID, b.ID, string(authz.RoleOwner))
		return err
	})
	if isUniqueViolation(err) {
		return Business{}, ErrDuplicateName
	}
	if err != nil {
		return Business{}, err
	}
	return b, nil
}

// Update persists changes to an existing business.
func (r *PGRepository) Update(ctx context.Context, b Business) (Business, error) {
	const query = `
		UPDATE businesses
		SET name = $2, sector = $3, timezone = $4, phone = $5, email = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, b.ID, b.Name, b.Sector, b.Timezone, b.Phone, b.Email, b.IsActive).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Business{}, shared.ErrNotFound
	}
	if isUniqueViolation(err) {
		return Business{}, ErrDuplicateName
	}
	return b, err
}

// Delete removes a business, returning the affected row count.
func (r *PGRepository) Delete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	return tag.RowsAffected(), err
}

func scanBusiness(row pgx.Row) (*Business, error) {
	var b Business
	err := row.Scan(&b.ID, &b.Name, &b.Sector, &b.Timezone, &b.Phone, &b.Email, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func isUniqueViolation(err error) bool {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code == "23505"
	}
	return false
}

var _ Repository = (*PGRepository)(nil)
