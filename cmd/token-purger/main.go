package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plantnet/plantnet-api/internal/app/api"
	platformobservability "github.com/plantnet/plantnet-api/internal/platform/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("token purger: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, "plantnet-token-purger")
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()
	logger := instruments.Logger

	storage := api.OpenStorage(ctx, cfg, logger)
	defer storage.Close()
	services, err := api.BuildServices(ctx, cfg, instruments, storage)
	if err != nil {
		log.Fatalf("token purger: %v", err)
	}
	defer services.Close()

	purge := func() {
		runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		purged, err := services.Users.PurgeRevocations(runCtx)
		if err != nil {
			logger.Error("token revocation purge failed", slog.String("error", err.Error()))
			return
		}
		logger.Info("token revocation purge completed", slog.Int64("purged", purged))
	}

	purge()
	if cfg.TokenPurgeIntervalMinute <= 0 {
		return
	}
	ticker := time.NewTicker(time.Duration(cfg.TokenPurgeIntervalMinute) * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
