package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	orderports "github.com/plantnet/plantnet-api/internal/domains/orders/ports"
)

const (
	// PlaceOrderActivityName verifies payment and commits stock + order.
	PlaceOrderActivityName = "orders.activities.PlaceOrder"
	// RefundPaymentActivityName refunds an intent whose order was rejected.
	RefundPaymentActivityName = "orders.activities.RefundPayment"
)

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

func (a *Activities) PlaceOrder(ctx context.Context, placement domain.Placement) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("place order activity not initialized", "transactionId", placement.TransactionID)
		return nil, errors.New("place order activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "transactionId", placement.TransactionID, "plantId", placement.PlantID)
	order, err := a.service.PlaceOrder(ctx, placement)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "transactionId", placement.TransactionID, "error", err)
		return nil, toApplicationError(err)
	}
	logger.Info("PlaceOrder activity completed", "orderId", order.ID)
	return order, nil
}

func (a *Activities) RefundPayment(ctx context.Context, transactionID string) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("refund activity not initialized", "transactionId", transactionID)
		return errors.New("refund activity not initialized")
	}
	logger.Info("RefundPayment activity started", "transactionId", transactionID)
	if err := a.service.RefundPayment(ctx, transactionID); err != nil {
		logger.Error("RefundPayment activity failed", "transactionId", transactionID, "error", err)
		return toApplicationError(err)
	}
	logger.Info("RefundPayment activity completed", "transactionId", transactionID)
	return nil
}
