package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/lexgestion/portal-api/config"
	"github.com/lexgestion/portal-api/internal/repository/postgres"
	"github.com/lexgestion/portal-api/internal/worker"
	"github.com/lexgestion/portal-api/pkg/logger"
	redisbroker "github.com/lexgestion/portal-api/pkg/messaging/redis"
)

// Standalone profile provisioner. Deployments that split the worker from
// the API run this binary; it requires Redis, the in-memory broker cannot
// cross the process boundary.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Redis.URL == "" {
		log.Fatal().Msg("worker requires redis.url to receive auth events")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	profileRepo := postgres.NewProfileRepository(postgres.NewBaseRepository(db))
	provisioner := worker.NewProvisioner(profileRepo, broker, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("shutting down worker")
		cancel()
	}()

	if err := provisioner.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("provisioner failed")
	}
}
