package shared

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyStore claims client-supplied idempotency keys so retried booking
// requests are applied once.
type IdempotencyStore struct {
	pool *pgxpool.Pool
}

// NewIdempotencyStore returns a new IdempotencyStore.
func NewIdempotencyStore(pool *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{pool: pool}
}

// Claim records the key for a scope. It returns false when the key was already
// claimed, meaning the request is a replay.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key string) (bool, error) {
	if s == nil {
		return false, errors.New("idempotency store not initialised")
	}
	if key == "" {
		// No key supplied: treat the request as non-idempotent.
		return true, nil
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO idempotency_keys (scope, key, created_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (scope, key) DO NOTHING`,
		scope, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
