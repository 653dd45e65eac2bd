package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from variables set by the host or other tests
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CI", "ENV", "SECRETS_DIR", "SERVER_PORT", "SERVER_HOST", "DB_DRIVER", "DB_HOST",
		"DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "SQLITE_PATH",
		"REDIS_URL", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "JWT_SECRET",
		"S3_BUCKET_NAME", "AWS_REGION", "ENGINE_TIMEZONE", "ORDER_HISTORY_LIMIT",
		"BULK_SPEND_THRESHOLD", "RECOMMENDATION_REFRESH_INTERVAL", "DISMISSAL_TTL",
		"RATE_LIMIT_PER_MINUTE", "CORS_ALLOWED_ORIGINS", "TEST_DB_PASSWORD", "TEST_JWT_SECRET", "TEST_REDIS_PASSWORD",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("SECRETS_DIR", t.TempDir())
}

func TestLoadConfigWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "aquaflow.db", cfg.SQLitePath)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, 50, cfg.OrderHistoryLimit)
	assert.Equal(t, 500.0, cfg.BulkSpendThreshold)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 24*time.Hour, cfg.DismissalTTL)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "aquaflow")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("ENGINE_TIMEZONE", "Asia/Kolkata")
	t.Setenv("BULK_SPEND_THRESHOLD", "750")
	t.Setenv("RECOMMENDATION_REFRESH_INTERVAL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.aquaflow.in, http://frontend:5173,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 750.0, cfg.BulkSpendThreshold)
	assert.Equal(t, 90*time.Second, cfg.RefreshInterval)
	assert.Equal(t, []string{"https://app.aquaflow.in", "http://frontend:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
	assert.Equal(t, "host=db port=5432 user=postgres password=secret dbname=aquaflow sslmode=disable", cfg.PostgresDSN())
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"timezone", "ENGINE_TIMEZONE", "Mars/Olympus"},
		{"order limit", "ORDER_HISTORY_LIMIT", "many"},
		{"zero order limit", "ORDER_HISTORY_LIMIT", "0"},
		{"threshold", "BULK_SPEND_THRESHOLD", "lots"},
		{"refresh interval", "RECOMMENDATION_REFRESH_INTERVAL", "5"},
		{"driver", "DB_DRIVER", "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestProductionRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "aquaflow")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db_password secret is required")
	assert.Contains(t, err.Error(), "jwt_secret secret is required")
}

func TestGetEnvironment(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, Development, GetEnvironment())

	t.Setenv("ENV", "test")
	assert.Equal(t, Test, GetEnvironment())

	t.Setenv("ENV", "prod")
	assert.True(t, IsProduction())

	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())
}
