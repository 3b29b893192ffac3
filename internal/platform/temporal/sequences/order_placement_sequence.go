package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	orderactivities "github.com/plantnet/plantnet-api/internal/platform/temporal/activities/orders"
)

// RunOrderPlacementSequence places the order and refunds the payment when
// the stock was gone by the time the order reached the database.
func RunOrderPlacementSequence(ctx workflow.Context, placement domain.Placement) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order placement sequence started", "transactionId", placement.TransactionID)
	placeOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: orderactivities.NonRetryableErrorTypes(),
		},
	}
	refundOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        time.Minute,
			MaximumAttempts:        10,
			NonRetryableErrorTypes: orderactivities.NonRetryableErrorTypes(),
		},
	}

	var order domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, placeOptions), orderactivities.PlaceOrderActivityName, placement).Get(ctx, &order)
	if err == nil {
		logger.Info("order placement sequence placed", "orderId", order.ID)
		return &order, nil
	}
	if !orderactivities.IsInsufficientStock(err) {
		logger.Error("order placement sequence failed", "transactionId", placement.TransactionID, "error", err)
		return nil, err
	}

	logger.Warn("stock exhausted after payment, refunding", "transactionId", placement.TransactionID)
	if refundErr := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, refundOptions), orderactivities.RefundPaymentActivityName, placement.TransactionID).Get(ctx, nil); refundErr != nil {
		logger.Error("order placement refund failed", "transactionId", placement.TransactionID, "error", refundErr)
	}
	return nil, err
}
