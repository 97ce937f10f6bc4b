package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotwise/slotwise/internal/platform/db"
	"github.com/slotwise/slotwise/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id string) (*Appointment, error)
	// Book inserts the appointment unless the staff member has an
	// overlapping booked slot. Returns ErrSlotTaken on overlap.
	Book(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id, status string) (int64, error)
	ListByClient(ctx context.Context, clientID int64, page shared.Pagination) ([]Appointment, int, error)
	ListByBusiness(ctx context.Context, businessID string, from, to time.Time) ([]Appointment, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const appointmentColumns = `id, business_id, location_id, offering_id, client_id, staff_id,
	starts_at, ends_at, status, notes, created_at, updated_at`

func (r *PGRepository) Get(ctx context.Context, id string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

// Book runs at Serializable isolation: two conflicting reservations for the
// same staff member cannot both observe an empty slot and commit.
func (r *PGRepository) Book(ctx context.Context, a *Appointment) error {
	return db.WithSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		var overlaps bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM appointments
				WHERE staff_id = $1
				  AND status = $2
				  AND starts_at < $3
				  AND ends_at > $4
			)`,
			a.StaffID, StatusBooked, a.EndsAt, a.StartsAt).Scan(&overlaps)
		if err != nil {
			return err
		}
		if overlaps {
			return ErrSlotTaken
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO appointments
				(id, business_id, location_id, offering_id, client_id, staff_id,
				 starts_at, ends_at, status, notes, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			a.ID, a.BusinessID, a.LocationID, a.OfferingID, a.ClientID, a.StaffID,
			a.StartsAt, a.EndsAt, a.Status, a.Notes, a.CreatedAt, a.UpdatedAt)
		return err
	})
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id, status string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGRepository) ListByClient(ctx context.Context, clientID int64, page shared.Pagination) ([]Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE client_id = $1`, clientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
		 WHERE client_id = $1
		 ORDER BY starts_at DESC
		 LIMIT $2 OFFSET $3`,
		clientID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	appts, err := collectAppointments(rows)
	return appts, total, err
}

func (r *PGRepository) ListByBusiness(ctx context.Context, businessID string, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
		 WHERE business_id = $1 AND starts_at >= $2 AND starts_at < $3
		 ORDER BY starts_at`,
		businessID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var appts []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *a)
	}
	return appts, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.BusinessID, &a.LocationID, &a.OfferingID, &a.ClientID, &a.StaffID,
		&a.StartsAt, &a.EndsAt, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

var _ Repository = (*PGRepository)(nil)
