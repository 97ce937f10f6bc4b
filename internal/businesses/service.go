package businesses

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/slotwise/slotwise/internal/shared"
)

// Service handles business profile rules.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Get fetches a business by ID.
func (s *Service) Get(ctx context.Context, id string) (*Business, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of businesses.
func (s *Service) List(ctx context.Context, page shared.Pagination) ([]Business, int, error) {
	return s.repo.List(ctx, page)
}

// Create registers a new business tenant. The acting user becomes its owner.
func (s *Service) Create(ctx context.Context, actorID int64, b Business) (Business, error) {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return Business{}, errors.New("businesses: name required")
	}
	if b.Timezone == "" {
		b.Timezone = "UTC"
	}
	b.ID = "biz-" + uuid.NewString()
	b.IsActive = true

	created, err := s.repo.Insert(ctx, b, actorID)
	if err != nil {
		return Business{}, err
	}
	s.recordAudit(ctx, actorID, created.ID, "business.create")
	return created, nil
}

// Update modifies an existing business profile.
func (s *Service) Update(ctx context.Context, actorID int64, b Business) (Business, error) {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return Business{}, errors.New("businesses: name required")
	}
	updated, err := s.repo.Update(ctx, b)
	if err != nil {
		return Business{}, err
	}
	s.recordAudit(ctx, actorID, updated.ID, "business.update")
	return updated, nil
}

// Delete removes a business. Returns shared.ErrNotFound when absent.
func (s *Service) Delete(ctx context.Context, actorID int64, id string) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.ErrNotFound
	}
	s.recordAudit(ctx, actorID, id, "business.delete")
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, businessID, action string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:    actorID,
		BusinessID: businessID,
		Action:     action,
		Entity:     "business",
		EntityID:   businessID,
	})
}
