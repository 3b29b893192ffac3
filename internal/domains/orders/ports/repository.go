package ports

import (
	"context"
	"errors"
	"time"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateOrder reports a second order for an already used transaction id.
	ErrDuplicateOrder = errors.New("order already placed for this transaction")
)

// Repository persists orders.
type Repository interface {
	// Create assigns an id. The transaction id is unique across orders.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	Count(ctx context.Context) (int64, error)
	// MarkRefunded records that the payment behind transactionID was
	// returned, so it can never fund an order. Repeated calls are no-ops.
	MarkRefunded(ctx context.Context, transactionID string, at time.Time) error
	IsRefunded(ctx context.Context, transactionID string) (bool, error)
}

// Transactor runs fn as one storage transaction. Repositories and the
// catalog called with the ctx passed to fn participate in it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
