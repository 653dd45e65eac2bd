package api

import (
	"net/http"
	"testing"

	"github.com/aquaflow/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func zapNop() *zap.Logger { return zap.NewNop() }

func TestHealth(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	router := testhelpers.SetupTestRouter()
	NewHealthHandler(db, nil).RegisterRoutes(router)

	w := testhelpers.PerformRequest(router, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","checks":{"database":"ok"}}`, w.Body.String())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = testhelpers.PerformRequest(router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthWithRedis(t *testing.T) {
	client := testhelpers.SetupTestRedis(t)
	router := testhelpers.SetupTestRouter()
	NewHealthHandler(testhelpers.NewSQLiteDB(t), client).RegisterRoutes(router)

	w := testhelpers.PerformRequest(router, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","checks":{"database":"ok","redis":"ok"}}`, w.Body.String())
}
