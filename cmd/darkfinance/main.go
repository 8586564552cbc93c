package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"darkfinance/internal/backend"
	"darkfinance/internal/cli"
	apphttp "darkfinance/internal/http"
	"darkfinance/internal/log"
	"darkfinance/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentHTTP)
	cfg := cli.LoadAndValidateConfig(logger)

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

	opts := []services.Option{services.WithLogger(logger.WithComponent(log.ComponentPlanning))}
	if result.AMQP != nil {
		opts = append(opts, services.WithPublisher(result.AMQP))
	}
	planner := services.NewPlanningService(result.Backend, opts...)

	var ready func(ctx context.Context) error
	if p, ok := result.Backend.(interface{ Ping(context.Context) error }); ok {
		ready = p.Ping
	}

	srv := apphttp.NewServer(":"+cfg.Port, planner, apphttp.Options{
		DefaultUserID:      cfg.DefaultUserID,
		OverviewCacheTTL:   cfg.OverviewCacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		Ready:              ready,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := result.Close(); err != nil {
			logger.Error("Backend close error", "error", err)
		}
	})

	logger.Info("Starting darkfinance server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"change_events", result.AMQP != nil,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
