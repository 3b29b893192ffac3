package ports

import (
	"context"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
)

// WorkflowOrchestrator runs order placement with refund compensation.
type WorkflowOrchestrator interface {
	PlaceOrder(ctx context.Context, placement domain.Placement) (*domain.Order, error)
}
