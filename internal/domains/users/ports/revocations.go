package ports

import (
	"context"
	"time"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
)

// RevocationStore remembers tokens invalidated by logout.
type RevocationStore interface {
	Revoke(ctx context.Context, revocation domain.Revocation) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// PurgeExpired drops revocations whose tokens have expired and reports how many.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
