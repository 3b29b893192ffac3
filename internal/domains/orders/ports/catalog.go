package ports

import (
	"context"
	"errors"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
)

var ErrPlantNotFound = errors.New("plant not found")

// Catalog is the slice of the plants context that orders depend on.
type Catalog interface {
	Get(ctx context.Context, plantID string) (*domain.Listing, error)
	// Adjust applies delta atomically; a decrement below zero fails with
	// domain.ErrInsufficientStock.
	Adjust(ctx context.Context, plantID string, delta int) (*domain.Listing, error)
}
