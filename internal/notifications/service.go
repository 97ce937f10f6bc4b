package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/slotwise/slotwise/internal/shared"
)

// Service manages notification preferences.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Preferences returns the user's saved choices, falling back to defaults.
func (s *Service) Preferences(ctx context.Context, userID int64) (Preference, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return DefaultPreference(userID), nil
		}
		return Preference{}, err
	}
	return *p, nil
}

// SavePreferences stores the user's choices.
func (s *Service) SavePreferences(ctx context.Context, p Preference) error {
	if p.UserID == 0 {
		return errors.New("notifications: user required")
	}
	p.UpdatedAt = time.Now().UTC()
	return s.repo.Upsert(ctx, &p)
}
