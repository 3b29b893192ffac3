package ports

import (
	"context"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
)

// QuantityUpdate reports the outcome of a manual stock change.
type QuantityUpdate struct {
	Matched  int64
	Modified int64
	Quantity int
}

// Service exposes purchase use cases to adapters.
type Service interface {
	CreatePaymentIntent(ctx context.Context, plantID string, quantity int) (*domain.PaymentIntent, error)
	// PlaceOrder decrements stock and records the order in one transaction.
	PlaceOrder(ctx context.Context, placement domain.Placement) (*domain.Order, error)
	RefundPayment(ctx context.Context, transactionID string) error
	UpdateQuantity(ctx context.Context, plantID string, amount int, direction string) (*QuantityUpdate, error)
}
