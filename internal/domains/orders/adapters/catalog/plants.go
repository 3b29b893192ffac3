// Package catalog adapts the plants bounded context to the orders Catalog port.
package catalog

import (
	"context"
	"errors"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	plantdomain "github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	plantports "github.com/plantnet/plantnet-api/internal/domains/plants/ports"
)

var _ ports.Catalog = (*Plants)(nil)

type Plants struct {
	repo plantports.Repository
}

func NewPlants(repo plantports.Repository) *Plants {
	return &Plants{repo: repo}
}

func (c *Plants) Get(ctx context.Context, plantID string) (*domain.Listing, error) {
	plant, err := c.repo.GetByID(ctx, plantID)
	if err != nil {
		return nil, translate(err)
	}
	return toListing(plant), nil
}

func (c *Plants) Adjust(ctx context.Context, plantID string, delta int) (*domain.Listing, error) {
	plant, err := c.repo.AdjustQuantity(ctx, plantID, delta)
	if err != nil {
		return nil, translate(err)
	}
	return toListing(plant), nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, plantports.ErrNotFound):
		return ports.ErrPlantNotFound
	case errors.Is(err, plantdomain.ErrInsufficientStock):
		return domain.ErrInsufficientStock
	default:
		return err
	}
}

func toListing(p *plantdomain.Plant) *domain.Listing {
	return &domain.Listing{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Image:    p.Image,
		Price:    p.Price,
		Quantity: p.Quantity,
		Seller:   domain.Party{Name: p.Seller.Name, Email: p.Seller.Email, Image: p.Seller.Image},
	}
}
