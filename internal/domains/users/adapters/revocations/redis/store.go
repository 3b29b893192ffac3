// Package redis keeps token revocations in Redis keys that expire with the token.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/domains/users/ports"
)

const keyPrefix = "plantnet:revoked:"

var _ ports.RevocationStore = (*Store)(nil)

type Store struct {
	client goredis.Cmdable
	now    func() time.Time
}

func NewStore(client goredis.Cmdable) *Store {
	return &Store{client: client, now: time.Now}
}

func (s *Store) Revoke(ctx context.Context, revocation domain.Revocation) error {
	if revocation.TokenID == "" {
		return errors.New("token id is required")
	}
	ttl := revocation.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, keyPrefix+revocation.TokenID, revocation.Email, ttl).Err()
}

func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PurgeExpired is a no-op: Redis evicts the keys when their TTL elapses.
func (s *Store) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
