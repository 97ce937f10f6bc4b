package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotwise/slotwise/internal/shared"
)

// Repository defines persistence operations for offerings.
type Repository interface {
	Get(ctx context.Context, id string) (*Offering, error)
	ListByBusiness(ctx context.Context, businessID string, activeOnly bool) ([]Offering, error)
	Insert(ctx context.Context, o Offering) (Offering, error)
	Update(ctx context.Context, o Offering) (Offering, error)
	Delete(ctx context.Context, id, businessID string) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const offeringColumns = `id, business_id, name, description, duration_min, price_cents, currency, is_active, created_at, updated_at`

// Get fetches an offering by ID.
func (r *PGRepository) Get(ctx context.Context, id string) (*Offering, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+offeringColumns+` FROM offerings WHERE id = $1`, id)
	return scanOffering(row)
}

// ListByBusiness returns the offerings of one business.
func (r *PGRepository) ListByBusiness(ctx context.Context, businessID string, activeOnly bool) ([]Offering, error) {
	query := `SELECT ` + offeringColumns + ` FROM offerings WHERE business_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Offering
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// Insert persists a new offering.
func (r *PGRepository) Insert(ctx context.Context, o Offering) (Offering, error) {
	const query = `
		INSERT INTO offerings (id, business_id, name, description, duration_min, price_cents, currency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		o.ID, o.BusinessID, o.Name, o.Description, o.DurationMin, o.PriceCents, o.Currency, o.IsActive,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// Update persists changes to an offering within its business.
func (r *PGRepository) Update(ctx context.Context, o Offering) (Offering, error) {
	const query = `
		UPDATE offerings
		SET name = $3, description = $4, duration_min = $5, price_cents = $6, currency = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1 AND business_id = $2
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		o.ID, o.BusinessID, o.Name, o.Description, o.DurationMin, o.PriceCents, o.Currency, o.IsActive,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Offering{}, shared.ErrNotFound
	}
	return o, err
}

// Delete removes an offering, returning the affected row count.
func (r *PGRepository) Delete(ctx context.Context, id, businessID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM offerings WHERE id = $1 AND business_id = $2`, id, businessID)
	return tag.RowsAffected(), err
}

func scanOffering(row pgx.Row) (*Offering, error) {
	var o Offering
	err := row.Scan(&o.ID, &o.BusinessID, &o.Name, &o.Description, &o.DurationMin, &o.PriceCents, &o.Currency, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

var _ Repository = (*PGRepository)(nil)
