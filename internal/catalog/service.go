package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/slotwise/slotwise/internal/shared"
)

// Service handles catalog rules.
type Service struct {
	repo     Repository
	collator *collate.Collator
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		collator: collate.New(language.Und, collate.IgnoreCase),
	}
}

// Get fetches an offering by ID.
func (s *Service) Get(ctx context.Context, id string) (*Offering, error) {
	return s.repo.Get(ctx, id)
}

// ListByBusiness returns a business's offerings sorted case-insensitively by
// name, so "aromatherapy" and "Acupuncture" interleave the way clients expect.
func (s *Service) ListByBusiness(ctx context.Context, businessID string, activeOnly bool) ([]Offering, error) {
	items, err := s.repo.ListByBusiness(ctx, businessID, activeOnly)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return s.collator.CompareString(items[i].Name, items[j].Name) < 0
	})
	return items, nil
}

// Create adds an offering to a business's catalog.
func (s *Service) Create(ctx context.Context, o Offering) (Offering, error) {
	if err := validateOffering(&o); err != nil {
		return Offering{}, err
	}
	o.ID = "off-" + uuid.NewString()
	o.IsActive = true
	return s.repo.Insert(ctx, o)
}

// Update modifies an offering.
func (s *Service) Update(ctx context.Context, o Offering) (Offering, error) {
	if err := validateOffering(&o); err != nil {
		return Offering{}, err
	}
	return s.repo.Update(ctx, o)
}

// Delete removes an offering from its business's catalog.
func (s *Service) Delete(ctx context.Context, id, businessID string) error {
	rows, err := s.repo.Delete(ctx, id, businessID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func validateOffering(o *Offering) error {
	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		return errors.New("catalog: name required")
	}
	if o.BusinessID == "" {
		return errors.New("catalog: business required")
	}
	if o.DurationMin <= 0 {
		return errors.New("catalog: duration must be positive")
	}
	if o.PriceCents < 0 {
		return errors.New("catalog: price must not be negative")
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	return nil
}
