package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	platformobservability "github.com/plantnet/plantnet-api/internal/platform/observability"
	platformtemporal "github.com/plantnet/plantnet-api/internal/platform/temporal"
	orderactivities "github.com/plantnet/plantnet-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/plantnet/plantnet-api/internal/platform/temporal/workflows/orders"
)

// RunWorker hosts the order placement workflow and its activities until
// ctx is cancelled.
func RunWorker(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	const workerName = "plantnet-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, workerName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	storage := OpenStorage(ctx, cfg, logger)
	defer storage.Close()
	services, err := BuildServices(ctx, cfg, instruments, storage)
	if err != nil {
		return err
	}
	defer services.Close()
	if reason := unsharedState(storage.Driver, services.Payments); reason != "" {
		return fmt.Errorf("worker would not share state with the API: %s", reason)
	}

	temporalClient, err := platformtemporal.Dial(
		platformtemporal.ClientConfig{Address: cfg.TemporalAddress, Namespace: cfg.TemporalNamespace},
		instruments.Tracer("temporal-worker"), logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	activities := orderactivities.NewActivities(services.Orders)
	w := worker.New(temporalClient, orderworkflows.PlacementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.PlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.PlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})
	w.RegisterActivityWithOptions(activities.RefundPayment, activity.RegisterOptions{Name: orderactivities.RefundPaymentActivityName})

	stop := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(stop)
	}()
	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.PlacementTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(stop); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}
