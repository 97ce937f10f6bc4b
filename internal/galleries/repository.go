package galleries

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotwise/slotwise/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id string) (*Image, error)
	ListByBusiness(ctx context.Context, businessID string) ([]Image, error)
	Insert(ctx context.Context, img *Image) error
	Update(ctx context.Context, img *Image) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const imageColumns = `id, business_id, title, caption, url, sort_order, created_at, updated_at`

func (r *PGRepository) Get(ctx context.Context, id string) (*Image, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+imageColumns+` FROM gallery_images WHERE id = $1`, id)
	return scanImage(row)
}

func (r *PGRepository) ListByBusiness(ctx context.Context, businessID string) ([]Image, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+imageColumns+` FROM gallery_images
		 WHERE business_id = $1
		 ORDER BY sort_order, created_at`,
		businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

func (r *PGRepository) Insert(ctx context.Context, img *Image) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO gallery_images (id, business_id, title, caption, url, sort_order, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		img.ID, img.BusinessID, img.Title, img.Caption, img.URL, img.SortOrder, img.CreatedAt, img.UpdatedAt)
	return err
}

func (r *PGRepository) Update(ctx context.Context, img *Image) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE gallery_images
		 SET title = $1, caption = $2, url = $3, sort_order = $4, updated_at = NOW()
		 WHERE id = $5`,
		img.Title, img.Caption, img.URL, img.SortOrder, img.ID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanImage(row pgx.Row) (*Image, error) {
	var img Image
	err := row.Scan(&img.ID, &img.BusinessID, &img.Title, &img.Caption, &img.URL, &img.SortOrder, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

var _ Repository = (*PGRepository)(nil)
