package ports

import (
	"context"
	"errors"

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
)

// ErrNotFound is returned for unknown and malformed plant ids alike.
var ErrNotFound = errors.New("plant not found")

// Repository persists catalogue listings.
type Repository interface {
	// Create assigns an id and timestamps.
	Create(ctx context.Context, plant *domain.Plant) (*domain.Plant, error)
	GetByID(ctx context.Context, id string) (*domain.Plant, error)
	List(ctx context.Context) ([]*domain.Plant, error)
	Count(ctx context.Context) (int64, error)
	// AdjustQuantity applies delta in one atomic storage operation and
	// returns the updated listing. A decrement that would leave negative
	// stock fails with domain.ErrInsufficientStock and changes nothing.
	AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Plant, error)
}
