package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/aquaflow/backend/config"
	"github.com/aquaflow/backend/internal/engine"
	"github.com/aquaflow/backend/internal/mocks"
	"github.com/aquaflow/backend/internal/testhelpers"
	"github.com/aquaflow/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:        config.Test,
		ServerHost:         "localhost",
		ServerPort:         "8080",
		CORSOrigins:        []string{"http://localhost:5173"},
		RefreshInterval:    time.Minute,
		RateLimitPerMinute: 60,
	}
}

func TestNew(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := new(mocks.MockTokenService)
	tokens.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: "user-1"}, nil)
	recs := new(mocks.MockRecommendationService)
	recs.On("Recommendations", mock.Anything, "user-1", "").Return([]engine.Recommendation{}, nil)

	srv := New(testConfig(), Dependencies{
		DB:              testhelpers.NewSQLiteDB(t),
		Tokens:          tokens,
		Recommendations: recs,
		Quality:         new(mocks.MockQualityService),
	}, nil)
	require.NotNil(t, srv)
	assert.Equal(t, "localhost:8080", srv.http.Addr)

	w := testhelpers.PerformRequest(srv.Handler(), http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testhelpers.PerformRequest(srv.Handler(), http.MethodGet, "/api/v1/me/recommendations", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// no Redis means no rate limit headers
	w = testhelpers.PerformRequest(srv.Handler(), http.MethodGet, "/api/v1/me/recommendations", nil,
		map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestNewAppliesRateLimitWithRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client := testhelpers.SetupTestRedis(t)
	tokens := new(mocks.MockTokenService)
	tokens.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: "user-1"}, nil)
	recs := new(mocks.MockRecommendationService)
	recs.On("Preferences", mock.Anything, "user-1").Return(engine.UserPreferences{}, nil)

	cfg := testConfig()
	cfg.RateLimitPerMinute = 1
	srv := New(cfg, Dependencies{
		DB:              testhelpers.NewSQLiteDB(t),
		Redis:           client,
		Tokens:          tokens,
		Recommendations: recs,
		Quality:         new(mocks.MockQualityService),
	}, nil)

	headers := map[string]string{"Authorization": "Bearer good"}
	w := testhelpers.PerformRequest(srv.Handler(), http.MethodGet, "/api/v1/me/preferences", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = testhelpers.PerformRequest(srv.Handler(), http.MethodGet, "/api/v1/me/preferences", nil, headers)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRecoveryRendersJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(testConfig(), Dependencies{DB: testhelpers.NewSQLiteDB(t), Tokens: new(mocks.MockTokenService)}, nil)
	srv.router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := testhelpers.PerformRequest(srv.Handler(), http.MethodGet, "/panic", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}
