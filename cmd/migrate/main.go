package main

import (
	"errors"
	"flag"
	"log"

	"github.com/aquaflow/backend/config"
	"github.com/aquaflow/backend/internal/database"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	migrationsDir := flag.String("dir", "migrations", "directory holding the SQL migrations")
	rollback := flag.Bool("rollback", false, "roll back the last applied SQL migration")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}

	if *rollback {
		name, err := database.RollbackLast(db, *migrationsDir, logger)
		if errors.Is(err, database.ErrNothingToRollback) {
			logger.Info("no migrations to roll back")
			return
		}
		if err != nil {
			logger.Fatal("rollback failed", zap.Error(err))
		}
		logger.Info("rollback complete", zap.String("migration", name))
		return
	}

	if err := database.RunMigrations(db, *migrationsDir, logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("all migrations applied")
}
