package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, "SERVER_PORT is required")
	}

	switch cfg.DBDriver {
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			errors = append(errors, "SQLITE_PATH is required for the sqlite driver")
		}
		if cfg.Environment == Production {
			errors = append(errors, "the sqlite driver is not allowed in production")
		}
	case DriverPostgres:
		if cfg.DBHost == "" {
			errors = append(errors, "DB_HOST is required for the postgres driver")
		}
		if cfg.DBName == "" {
			errors = append(errors, "DB_NAME is required for the postgres driver")
		}
		if cfg.DBPassword == "" {
			errors = append(errors, sensitive(cfg.Environment, "DB_PASSWORD", "db_password"))
		}
	default:
		errors = append(errors, fmt.Sprintf("unsupported DB_DRIVER %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		errors = append(errors, sensitive(cfg.Environment, "JWT_SECRET", "jwt_secret"))
	}

	if cfg.OrderHistoryLimit <= 0 {
		errors = append(errors, "ORDER_HISTORY_LIMIT must be positive")
	}
	if cfg.BulkSpendThreshold < 0 {
		errors = append(errors, "BULK_SPEND_THRESHOLD must not be negative")
	}
	if cfg.RefreshInterval <= 0 {
		errors = append(errors, "RECOMMENDATION_REFRESH_INTERVAL must be positive")
	}
	if cfg.DismissalTTL <= 0 {
		errors = append(errors, "DISMISSAL_TTL must be positive")
	}
	if cfg.RateLimitPerMinute <= 0 {
		errors = append(errors, "RATE_LIMIT_PER_MINUTE must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

// sensitive names where a missing secret must come from in the given environment
func sensitive(env Environment, envVar, secret string) string {
	switch env {
	case CI:
		return fmt.Sprintf("TEST_%s environment variable is required in CI environment", envVar)
	case Production:
		return fmt.Sprintf("%s secret is required", secret)
	default:
		return fmt.Sprintf("%s environment variable or %s secret is required", envVar, secret)
	}
}
