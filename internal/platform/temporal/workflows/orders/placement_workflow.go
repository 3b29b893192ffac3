package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/platform/temporal/sequences"
)

const (
	// PlacementWorkflowName is the public identifier for registering the workflow.
	PlacementWorkflowName = "orders.workflows.Placement"
	// PlacementTaskQueue is the queue consumed by the worker processing order workflows.
	PlacementTaskQueue = "ORDER_PLACEMENT"
)

type PlacementWorkflowInput struct {
	Placement domain.Placement
	TraceID   string
}

// PlacementWorkflow runs order placement with refund compensation.
func PlacementWorkflow(ctx workflow.Context, input PlacementWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	txnID := input.Placement.TransactionID
	logger.Info("PlacementWorkflow started", withTraceID(input.TraceID, "transactionId", txnID)...)
	order, err := sequences.RunOrderPlacementSequence(ctx, input.Placement)
	if err != nil {
		logger.Error("PlacementWorkflow failed", withTraceID(input.TraceID, "transactionId", txnID, "error", err)...)
		return nil, err
	}
	logger.Info("PlacementWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
