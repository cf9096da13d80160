// package main provides the entry point for the dashboard-backend service: it loads
// configuration, opens the dashboard store, wires the event producer and serves
// the REST and GraphQL API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clonos/dashboard-backend/database"
	events "github.com/clonos/dashboard-backend/events/modules/dashboards"
	"github.com/clonos/dashboard-backend/internal/api"
	"github.com/clonos/dashboard-backend/internal/config"
	"github.com/clonos/dashboard-backend/internal/kafka"
	"github.com/clonos/dashboard-backend/internal/middleware"
	"github.com/clonos/dashboard-backend/restapi/modules/auth"
	"go.uber.org/zap"
)

const (
	shutdownTimeout  = 10 * time.Second
	limiterSweep     = 10 * time.Minute
	brokerCheckTries = 3
)

func main() {
	logger := database.InitLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := auth.SetJWTSecret(cfg.JWTSecret); err != nil {
		logger.Fatal("Invalid JWT secret", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	store, err := database.Open(ctx, cfg.Database(), logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	publisher := newPublisher(ctx, &cfg, logger)

	limiter := middleware.NewIPRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.RunCleanup(ctx, limiterSweep)

	app, err := api.NewFiberApp(&cfg, store, publisher, limiter, logger)
	if err != nil {
		logger.Fatal("Failed to create GraphQL schema", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Starting server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("driver", store.Driver()))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := publisher.Close(); err != nil {
		logger.Warn("Failed to close event producer", zap.Error(err))
	}
	if err := store.Close(closeCtx); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}
}

// newPublisher connects the dashboard event producer when brokers are
// configured. Events are optional: an unreachable broker only logs a warning.
func newPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("No Kafka brokers configured, dashboard events disabled")
		return events.NopPublisher{}
	}

	creds := kafka.Credentials{APIKey: cfg.KafkaAPIKey, APISecret: cfg.KafkaAPISecret}
	if err := kafka.CheckBroker(ctx, cfg.KafkaBrokers, kafka.NewDialer(creds), brokerCheckTries, logger); err != nil {
		logger.Warn("Kafka broker not reachable, events will be retried by the writer", zap.Error(err))
	}

	logger.Info("Publishing dashboard events",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic))
	return events.NewDashboardProducer(cfg.KafkaBrokers, cfg.KafkaTopic, kafka.NewTransport(creds), logger)
}
