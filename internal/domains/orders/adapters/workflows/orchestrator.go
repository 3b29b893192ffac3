package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	orderactivities "github.com/plantnet/plantnet-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/plantnet/plantnet-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineOrderWorkflows)(nil)
)

// TemporalOrderWorkflows starts order placement on a Temporal cluster.
type TemporalOrderWorkflows struct {
	client    client.Client
	taskQueue string
}

func NewTemporalOrderWorkflows(c client.Client) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.PlacementTaskQueue}
}

// PlaceOrder starts the placement workflow and waits for its result. The
// workflow id is derived from the transaction id, so a concurrent duplicate
// submission attaches to the running execution instead of starting another.
func (o *TemporalOrderWorkflows) PlaceOrder(ctx context.Context, placement domain.Placement) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order workflows not configured")
	}
	placement = placement.Normalize()
	if placement.TransactionID == "" {
		return nil, domain.ErrMissingTransaction
	}
	workflowID := buildPlacementWorkflowID(placement.TransactionID)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.PlacementWorkflow,
		orderworkflows.PlacementWorkflowInput{Placement: placement, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, orderactivities.FromWorkflowError(err)
	}
	return &order, nil
}

// InlineOrderWorkflows runs the same placement and compensation steps in
// process. Used when Temporal is unavailable and in tests.
type InlineOrderWorkflows struct {
	service ports.Service
	logger  *slog.Logger
}

func NewInlineOrderWorkflows(service ports.Service, logger *slog.Logger) *InlineOrderWorkflows {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &InlineOrderWorkflows{service: service, logger: logger}
}

func (o *InlineOrderWorkflows) PlaceOrder(ctx context.Context, placement domain.Placement) (*domain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order workflows not configured")
	}
	order, err := o.service.PlaceOrder(ctx, placement)
	if err == nil {
		return order, nil
	}
	if errors.Is(err, domain.ErrInsufficientStock) {
		o.logger.WarnContext(ctx, "stock exhausted after payment, refunding", slog.String("transaction.id", placement.TransactionID))
		if refundErr := o.service.RefundPayment(ctx, placement.TransactionID); refundErr != nil {
			o.logger.ErrorContext(ctx, "order placement refund failed",
				slog.String("transaction.id", placement.TransactionID), slog.String("error", refundErr.Error()))
		}
	}
	return nil, err
}

func buildPlacementWorkflowID(transactionID string) string {
	return fmt.Sprintf("order-placement-%s", hashTransactionID(strings.TrimSpace(transactionID)))
}

func hashTransactionID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
