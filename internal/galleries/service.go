package galleries

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/slotwise/slotwise/internal/shared"
)

var ErrInvalidImage = errors.New("galleries: invalid image")

// Service manages gallery metadata. Concurrent listing requests for the same
// business are collapsed into a single repository query.
type Service struct {
	repo  Repository
	group singleflight.Group
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*Image, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByBusiness(ctx context.Context, businessID string) ([]Image, error) {
	v, err, _ := s.group.Do(businessID, func() (any, error) {
		// Collapsed callers share this one execution, so it must not die
		// with whichever request happened to start it.
		return s.repo.ListByBusiness(context.WithoutCancel(ctx), businessID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Image), nil
}

func (s *Service) Create(ctx context.Context, img Image) (Image, error) {
	if err := validateImage(img); err != nil {
		return Image{}, err
	}
	now := time.Now().UTC()
	img.ID = "img-" + uuid.NewString()
	img.CreatedAt = now
	img.UpdatedAt = now
	if err := s.repo.Insert(ctx, &img); err != nil {
		return Image{}, err
	}
	return img, nil
}

func (s *Service) Update(ctx context.Context, img Image) (Image, error) {
	if err := validateImage(img); err != nil {
		return Image{}, err
	}
	rows, err := s.repo.Update(ctx, &img)
	if err != nil {
		return Image{}, err
	}
	if rows == 0 {
		return Image{}, shared.ErrNotFound
	}
	return img, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func validateImage(img Image) error {
	if img.BusinessID == "" || img.Title == "" {
		return ErrInvalidImage
	}
	parsed, err := url.Parse(img.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ErrInvalidImage
	}
	return nil
}
