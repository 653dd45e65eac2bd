package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aquaflow/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table owned by the application
func Models() []interface{} {
	return []interface{}{
		&models.Supplier{},
		&models.UserProfile{},
		&models.Order{},
		&models.OrderItem{},
		&models.AreaProductPopularity{},
		&models.LabReport{},
	}
}

// Migrate creates or updates the schema with gorm's auto-migration
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

const rollbackSuffix = "_rollback.sql"

// ErrNothingToRollback is returned by RollbackLast when no SQL migration is recorded
var ErrNothingToRollback = errors.New("no migrations to roll back")

// RunMigrations applies Migrate and then, on PostgreSQL, every SQL file in
// migrationsDir not yet recorded in the migrations table. An empty
// migrationsDir skips the SQL step.
func RunMigrations(db *gorm.DB, migrationsDir string, log *zap.Logger) error {
	if err := Migrate(db); err != nil {
		return err
	}
	if migrationsDir == "" || db.Dialector.Name() != "postgres" {
		return nil
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") && !strings.HasSuffix(e.Name(), rollbackSuffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, name := range files {
		var count int64
		if err := db.Table("migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.Debug("skipping applied migration", zap.String("name", name))
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return err
			}
			return tx.Exec("INSERT INTO migrations (name) VALUES (?)", name).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		log.Info("applied migration", zap.String("name", name))
	}

	return nil
}

// RollbackLast undoes the most recently applied SQL migration by running its
// <name>_rollback.sql companion and removing its record
func RollbackLast(db *gorm.DB, migrationsDir string, log *zap.Logger) (string, error) {
	var last struct{ Name string }
	err := db.Table("migrations").Select("name").Order("applied_at DESC, id DESC").Limit(1).Scan(&last).Error
	if err != nil {
		return "", fmt.Errorf("failed to find last migration: %w", err)
	}
	if last.Name == "" {
		return "", ErrNothingToRollback
	}

	path := filepath.Join(migrationsDir, strings.TrimSuffix(last.Name, ".sql")+rollbackSuffix)
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read rollback file: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM migrations WHERE name = ?", last.Name).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to roll back %s: %w", last.Name, err)
	}
	log.Info("rolled back migration", zap.String("name", last.Name))
	return last.Name, nil
}
