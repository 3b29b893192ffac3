package ports

import (
	"context"
	"errors"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
)

var (
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrPaymentNotCompleted = errors.New("payment has not succeeded")
	ErrPaymentProvider     = errors.New("payment provider unavailable")
	// ErrPaymentRefunded reports an intent whose money already went back.
	ErrPaymentRefunded = errors.New("payment was refunded")
	// ErrPaymentMismatch reports an intent priced for a different purchase.
	ErrPaymentMismatch = errors.New("payment does not match the order")
)

// PaymentGateway talks to the payment provider.
type PaymentGateway interface {
	// CreateIntent charges req.Amount and records the plant and quantity
	// on the intent.
	CreateIntent(ctx context.Context, req domain.IntentRequest) (*domain.PaymentIntent, error)
	// GetIntent includes the refunded amount of the latest charge.
	GetIntent(ctx context.Context, id string) (*domain.PaymentIntent, error)
	Refund(ctx context.Context, intentID string) error
}
