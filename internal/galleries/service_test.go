package galleries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise/internal/shared"
)

type memoryRepo struct {
	images map[string]Image
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{images: map[string]Image{}}
}

func (r *memoryRepo) Get(_ context.Context, id string) (*Image, error) {
	img, ok := r.images[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &img, nil
}

func (r *memoryRepo) ListByBusiness(ctx context.Context, businessID string) ([]Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Image
	for _, img := range r.images {
		if img.BusinessID == businessID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (r *memoryRepo) Insert(_ context.Context, img *Image) error {
	r.images[img.ID] = *img
	return nil
}

func (r *memoryRepo) Update(_ context.Context, img *Image) (int64, error) {
	if _, ok := r.images[img.ID]; !ok {
		return 0, nil
	}
	r.images[img.ID] = *img
	return 1, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := r.images[id]; !ok {
		return 0, nil
	}
	delete(r.images, id)
	return 1, nil
}

func TestCreateValidatesImage(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Image{BusinessID: "biz-1", Title: "Lobby", URL: "not-a-url"})
	assert.ErrorIs(t, err, ErrInvalidImage)

	img, err := svc.Create(context.Background(), Image{BusinessID: "biz-1", Title: "Lobby", URL: "https://cdn.example.com/lobby.jpg"})
	require.NoError(t, err)
	assert.NotEmpty(t, img.ID)
}

func TestListSurvivesCallerCancellation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), Image{BusinessID: "biz-1", Title: "Lobby", URL: "https://cdn.example.com/lobby.jpg"})
	require.NoError(t, err)

	// The listing query is shared across collapsed callers, so one
	// cancelled request must not poison the result for the rest.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	images, err := svc.ListByBusiness(ctx, "biz-1")
	require.NoError(t, err)
	assert.Len(t, images, 1)
}
