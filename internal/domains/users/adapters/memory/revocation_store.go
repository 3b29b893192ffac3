package memory

import (
	"context"
	"sync"
	"time"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/domains/users/ports"
)

var _ ports.RevocationStore = (*RevocationStore)(nil)

// RevocationStore keeps revoked token ids in process memory.
type RevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]domain.Revocation
	now     func() time.Time
}

func NewRevocationStore() *RevocationStore {
	return &RevocationStore{revoked: map[string]domain.Revocation{}, now: time.Now}
}

func (s *RevocationStore) Revoke(_ context.Context, revocation domain.Revocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[revocation.TokenID] = revocation
	return nil
}

func (s *RevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rev, ok := s.revoked[tokenID]
	return ok && !rev.Expired(s.now()), nil
}

func (s *RevocationStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for id, rev := range s.revoked {
		if rev.Expired(now) {
			delete(s.revoked, id)
			purged++
		}
	}
	return purged, nil
}
