package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aquaflow/backend/config"
	"github.com/aquaflow/backend/internal/database"
	"github.com/aquaflow/backend/internal/server"
	"github.com/aquaflow/backend/internal/service"
	"github.com/aquaflow/backend/internal/store"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newLogger(env config.Environment) (*zap.Logger, error) {
	if env == config.Production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	// A missing .env file is fine outside development
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.RunMigrations(db, getMigrationsDir(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	var (
		redisClient redis.Cmdable
		dismissals  service.DismissalStore = service.NewMemoryDismissalStore(cfg.DismissalTTL)
	)
	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(cfg, logger)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory dismissals without rate limiting", zap.Error(err))
		} else {
			defer client.Close()
			redisClient = client
			dismissals = service.NewRedisDismissalStore(client, cfg.DismissalTTL)
		}
	}

	var archive service.ObjectStore
	if cfg.S3Bucket != "" {
		s3cfg, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			logger.Warn("document archive disabled", zap.Error(err))
		} else {
			archive = service.NewS3Archive(s3cfg)
		}
	}

	orders := store.NewOrderStore(db)
	profiles := store.NewProfileStore(db)
	aggregates := store.NewAggregateStore(db)
	suppliers := store.NewSupplierStore(db)
	reports := store.NewLabReportStore(db)

	recommendations := service.NewRecommendationService(orders, profiles, aggregates, suppliers, dismissals,
		service.RecommendationConfig{
			Location:           cfg.Location(),
			OrderLimit:         cfg.OrderHistoryLimit,
			BulkSpendThreshold: cfg.BulkSpendThreshold,
			Logger:             logger,
		})
	quality := service.NewQualityService(reports, suppliers, archive, logger)

	srv := server.New(cfg, server.Dependencies{
		DB:              db,
		Redis:           redisClient,
		Tokens:          service.NewTokenService(cfg.JWTSecret),
		Recommendations: recommendations,
		Quality:         quality,
	}, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func getMigrationsDir() string {
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "migrations"
}
