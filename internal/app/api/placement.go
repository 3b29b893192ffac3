package api

import (
	"log/slog"

	"go.temporal.io/sdk/client"

	orderworkflows "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/workflows"
	orderports "github.com/plantnet/plantnet-api/internal/domains/orders/ports"
)

// Payment gateways reported by BuildServices.
const (
	PaymentsStripe  = "stripe"
	PaymentsOffline = "offline"
)

// unsharedState explains why a separate worker process would not see the
// API's plants, orders or payment intents. Empty means nothing is process
// local.
func unsharedState(storageDriver, payments string) string {
	switch {
	case storageDriver == DriverMemory:
		return "storage is in-memory"
	case payments == PaymentsOffline:
		return "the offline payment gateway keeps intents in process"
	}
	return ""
}

// temporalPlacement reports whether orders may be placed through Temporal,
// and the reason when they may not.
func temporalPlacement(cfg Config, storageDriver, payments string) (bool, string) {
	if cfg.TemporalDisabled {
		return false, "disabled via TEMPORAL_DISABLED"
	}
	if reason := unsharedState(storageDriver, payments); reason != "" {
		return false, reason
	}
	return true, ""
}

// selectOrderWorkflows picks the placement orchestrator. dial is only called when
// Temporal is usable; the returned cleanup closes its client.
func selectOrderWorkflows(cfg Config, storage *Storage, services *Services, logger *slog.Logger,
	dial func() (client.Client, error)) (orderports.WorkflowOrchestrator, func()) {
	inline := orderworkflows.NewInlineOrderWorkflows(services.Orders, logger)
	ok, reason := temporalPlacement(cfg, storage.Driver, services.Payments)
	if !ok {
		logger.Warn("placing orders inline", slog.String("reason", reason))
		return inline, func() {}
	}
	temporalClient, err := dial()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	return orderworkflows.NewTemporalOrderWorkflows(temporalClient), temporalClient.Close
}
