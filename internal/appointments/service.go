package appointments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slotwise/slotwise/internal/shared"
)

// KeyClaimer claims an idempotency key, reporting false on replay.
type KeyClaimer interface {
	Claim(ctx context.Context, scope, key string) (bool, error)
}

// Notifier enqueues appointment notifications for asynchronous delivery.
type Notifier interface {
	AppointmentBooked(ctx context.Context, a Appointment) error
	AppointmentCancelled(ctx context.Context, a Appointment) error
}

// Service implements booking, cancellation and calendar reads.
type Service struct {
	repo     Repository
	keys     KeyClaimer
	notifier Notifier
	audit    *shared.AuditLogger
}

func NewService(repo Repository, keys KeyClaimer, notifier Notifier, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, keys: keys, notifier: notifier, audit: audit}
}

func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	return s.repo.Get(ctx, id)
}

// Book reserves a slot. A retried request carrying the same idempotency key
// is rejected with ErrDuplicateRequest instead of double-booking.
func (s *Service) Book(ctx context.Context, idempotencyKey string, a Appointment) (*Appointment, error) {
	if err := validateSlot(a); err != nil {
		return nil, err
	}

	if s.keys != nil {
		fresh, err := s.keys.Claim(ctx, "appointments.book", strings.TrimSpace(idempotencyKey))
		if err != nil {
			return nil, err
		}
		if !fresh {
			return nil, ErrDuplicateRequest
		}
	}

	now := time.Now().UTC()
	a.ID = "apt-" + uuid.NewString()
	a.Status = StatusBooked
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.repo.Book(ctx, &a); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, a.ClientID, a.BusinessID, "appointments.book", a.ID)
	if s.notifier != nil {
		if err := s.notifier.AppointmentBooked(ctx, a); err != nil {
			// Delivery is best effort; the booking stands.
			s.recordAudit(ctx, a.ClientID, a.BusinessID, "appointments.notify_failed", a.ID)
		}
	}
	return &a, nil
}

// Cancel moves a booked appointment to cancelled.
func (s *Service) Cancel(ctx context.Context, actorID int64, id string) (*Appointment, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Cancellable() {
		return nil, ErrAlreadyCancelled
	}

	rows, err := s.repo.UpdateStatus(ctx, id, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, shared.ErrNotFound
	}
	a.Status = StatusCancelled

	s.recordAudit(ctx, actorID, a.BusinessID, "appointments.cancel", a.ID)
	if s.notifier != nil {
		_ = s.notifier.AppointmentCancelled(ctx, *a)
	}
	return a, nil
}

// ListOwn returns the client's own appointments, newest first.
func (s *Service) ListOwn(ctx context.Context, clientID int64, page shared.Pagination) ([]Appointment, int, error) {
	return s.repo.ListByClient(ctx, clientID, page)
}

// Calendar returns a business's appointments in [from, to).
func (s *Service) Calendar(ctx context.Context, businessID string, from, to time.Time) ([]Appointment, error) {
	if !to.After(from) {
		return nil, ErrInvalidSlot
	}
	return s.repo.ListByBusiness(ctx, businessID, from, to)
}

func validateSlot(a Appointment) error {
	if a.BusinessID == "" || a.OfferingID == "" || a.ClientID == 0 || a.StaffID == 0 {
		return ErrInvalidSlot
	}
	if a.StartsAt.IsZero() || !a.EndsAt.After(a.StartsAt) {
		return ErrInvalidSlot
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, businessID, action, apptID string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:    actorID,
		BusinessID: businessID,
		Action:     action,
		Entity:     "appointment",
		EntityID:   apptID,
		At:         time.Now().UTC(),
	})
}
