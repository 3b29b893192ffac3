package ports

import (
	"context"

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
)

// Service exposes catalogue use cases to adapters.
type Service interface {
	AddPlant(ctx context.Context, plant *domain.Plant) (*domain.Plant, error)
	GetPlant(ctx context.Context, id string) (*domain.Plant, error)
	ListPlants(ctx context.Context) ([]*domain.Plant, error)
	SearchPlants(ctx context.Context, query string, limit int) ([]*domain.Plant, error)
	CountPlants(ctx context.Context) (int64, error)
}
