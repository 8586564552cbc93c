package main

import (
	"context"
	"errors"
	"os"
	"time"

	"darkfinance/internal/backend"
	"darkfinance/internal/cli"
	"darkfinance/internal/log"
	"darkfinance/internal/services"
	"darkfinance/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting planner-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend == backend.MemoryBackend.String() {
		logger.Warn("Memory backend is private to this process; snapshots will not be visible to the API server")
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	planner := services.NewPlanningService(result.Backend,
		services.WithLogger(logger.WithComponent(log.ComponentPlanning)))
	projections := worker.NewProjectionWorker(planner, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if result.AMQP != nil {
		go func() {
			err := result.AMQP.ConsumeRecordChanges(ctx, projections.HandleRecordChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
		}()
	} else {
		logger.Info("Change events disabled - relying on periodic snapshots only")
	}

	logger.Info("Snapshot sweep scheduled", "interval", cfg.SnapshotInterval)
	projections.Run(ctx, cfg.SnapshotInterval)

	cli.WaitForShutdown(ctx, done)
	if err := result.Close(); err != nil {
		logger.Error("Backend close error", "error", err)
	}
	logger.Info("Worker shutdown complete")
}
