package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"

	plantnetserver "github.com/plantnet/plantnet-api/go"

	orderports "github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	"github.com/plantnet/plantnet-api/internal/platform/metrics"
	platformobservability "github.com/plantnet/plantnet-api/internal/platform/observability"
	platformtemporal "github.com/plantnet/plantnet-api/internal/platform/temporal"
)

const serviceName = "plantnet-api"

// Run boots the plantNet HTTP API with observability, storage, and
// workflows wired, and serves until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
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

	orderWorkflows, closeWorkflows := selectOrderWorkflows(cfg, storage, services, logger, func() (client.Client, error) {
		return platformtemporal.Dial(
			platformtemporal.ClientConfig{Address: cfg.TemporalAddress, Namespace: cfg.TemporalNamespace},
			instruments.Tracer("temporal-client"), logger,
		)
	})
	defer closeWorkflows()

	router := NewRouter(cfg, services, orderWorkflows, logger)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("plantNet API listening", slog.String("addr", server.Addr), slog.String("storage", storage.Driver))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("plantNet API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down plantNet API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// NewRouter assembles the gin engine with its middleware and the plantNet routes.
func NewRouter(cfg Config, services *Services, workflows orderports.WorkflowOrchestrator, logger *slog.Logger) *gin.Engine {
	responder := plantnetserver.NewResponder("").WithLogger(logger)
	httpMetrics := metrics.NewHTTPMetrics()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(plantnetserver.RequestLogger(logger))
	router.Use(httpMetrics.Middleware())
	router.Use(plantnetserver.CORS(cfg.CORSOrigins, cfg.CORSHeaders))
	router.GET("/metrics", gin.WrapH(httpMetrics.Handler()))

	return plantnetserver.NewRouterWithGinEngine(router, plantnetserver.ApiHandleFunctions{
		PlantAPI: plantnetserver.NewPlantAPI(services.Plants, responder),
		OrderAPI: plantnetserver.NewOrderAPI(services.Orders, workflows, responder),
		UserAPI:  plantnetserver.NewUserAPI(services.Users, cfg.CookiePolicy(), responder),
		StatsAPI: plantnetserver.NewStatsAPI(services.Stats, responder),
		Auth:     plantnetserver.RequireToken(services.Users, responder),
	})
}
