package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotwise/slotwise/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, userID int64) (*Preference, error)
	Upsert(ctx context.Context, p *Preference) error
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Get(ctx context.Context, userID int64) (*Preference, error) {
	var p Preference
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, email_enabled, sms_enabled, reminders_enabled, updated_at
		 FROM notification_preferences WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.EmailEnabled, &p.SMSEnabled, &p.RemindersEnabled, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) Upsert(ctx context.Context, p *Preference) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notification_preferences (user_id, email_enabled, sms_enabled, reminders_enabled, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
			email_enabled = EXCLUDED.email_enabled,
			sms_enabled = EXCLUDED.sms_enabled,
			reminders_enabled = EXCLUDED.reminders_enabled,
			updated_at = NOW()`,
		p.UserID, p.EmailEnabled, p.SMSEnabled, p.RemindersEnabled)
	return err
}

var _ Repository = (*PGRepository)(nil)
