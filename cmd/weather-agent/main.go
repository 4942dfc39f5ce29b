package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/stationlab/weather-agent/internal/analysis"
	httpapi "github.com/stationlab/weather-agent/internal/api/http"
	"github.com/stationlab/weather-agent/internal/config"
	"github.com/stationlab/weather-agent/internal/logging"
	"github.com/stationlab/weather-agent/internal/narrator"
	"github.com/stationlab/weather-agent/internal/observations"
	"github.com/stationlab/weather-agent/internal/store"
	"github.com/stationlab/weather-agent/internal/watchdog"
)

const serviceName = "weather-agent"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.AppEnv, cfg.LogLevel, serviceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// BigQuery-backed observation source.
	var bqOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		bqOpts = append(bqOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	source, err := observations.NewClient(ctx, cfg.ProjectID, cfg.Dataset, cfg.StationID, bqOpts...)
	if err != nil {
		logger.Error("failed to create observation source", "error", err)
		os.Exit(1)
	}
	defer source.Close()

	// Narrator with a bounded outbound client.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	narr := narrator.NewClient(httpClient, cfg.HFBaseURL, cfg.HFToken, cfg.LLMModel)

	// Requests read through the TTL cache; health checks and the watchdog
	// probe the source directly.
	cached := store.NewCachedSource(source, cfg.ObsCacheTTL)

	thresholds := analysis.Thresholds{
		AnomalyZScore: cfg.AnomalyZScore,
		SpikeDeltaC:   cfg.SpikeThresholdC,
	}
	service := analysis.NewService(cached, narr, cfg.StationID, thresholds, logger)

	// Watchdog that periodically verifies data-source connectivity.
	wd := watchdog.New(source, cfg.WatchdogInterval, logger)
	if err := wd.Start(); err != nil {
		logger.Error("failed to start watchdog", "error", err)
		os.Exit(1)
	}
	defer wd.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Narrator retries make the slowest requests minutes-long.
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New())

	// API routes.
	httpapi.RegisterRoutes(app, service, source, httpapi.Meta{
		ServiceName: serviceName,
		Version:     "1.0.0",
		StationID:   cfg.StationID,
		ProjectID:   cfg.ProjectID,
		Dataset:     cfg.Dataset,
		ModelID:     cfg.LLMModel,
	})

	// Start server with graceful shutdown
	go func() {
		logger.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
}
