package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/aquaflow/backend/internal/middleware"
	"github.com/aquaflow/backend/internal/service"
	"github.com/aquaflow/backend/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHeader selects the dismissal set for a request
const SessionHeader = "X-Session-ID"

type RecommendationHandler struct {
	recommendations service.IRecommendationService
	refresher       *service.Refresher
	now             func() time.Time
	logger          *zap.Logger
}

func NewRecommendationHandler(recommendations service.IRecommendationService, refreshInterval time.Duration, logger *zap.Logger) *RecommendationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationHandler{
		recommendations: recommendations,
		refresher:       service.NewRefresher(recommendations, refreshInterval, logger),
		now:             time.Now,
		logger:          logger,
	}
}

// RegisterRoutes expects a group that already runs AuthMiddleware
func (h *RecommendationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/recommendations", h.GetRecommendations)
	router.GET("/recommendations/stream", h.StreamRecommendations)
	router.POST("/recommendations/:id/dismiss", h.Dismiss)
	router.GET("/preferences", h.GetPreferences)
	router.GET("/patterns", h.GetPatterns)
}

func (h *RecommendationHandler) response(userID string, recs []engine.Recommendation) types.RecommendationsResponse {
	return types.RecommendationsResponse{
		UserID:          userID,
		GeneratedAt:     h.now().UTC(),
		Recommendations: recs,
	}
}

func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	recs, err := h.recommendations.Recommendations(c.Request.Context(), userID, c.GetHeader(SessionHeader))
	if err != nil {
		respondError(c, h.logger, err, "failed to generate recommendations")
		return
	}
	c.JSON(http.StatusOK, h.response(userID, recs))
}

// StreamRecommendations pushes a fresh list as a server-sent event every
// refresh interval until the client goes away
func (h *RecommendationHandler) StreamRecommendations(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	err = h.refresher.Run(c.Request.Context(), userID, c.GetHeader(SessionHeader), func(recs []engine.Recommendation) error {
		c.SSEvent("recommendations", h.response(userID, recs))
		c.Writer.Flush()
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		h.logger.Warn("recommendation stream ended", zap.String("user_id", userID), zap.Error(err))
	}
}

func (h *RecommendationHandler) Dismiss(c *gin.Context) {
	if _, err := middleware.UserID(c); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	id := c.Param("id")
	if err := h.recommendations.Dismiss(c.Request.Context(), c.GetHeader(SessionHeader), id); err != nil {
		respondError(c, h.logger, err, "failed to dismiss recommendation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dismissed": id})
}

func (h *RecommendationHandler) GetPreferences(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	prefs, err := h.recommendations.Preferences(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to infer preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *RecommendationHandler) GetPatterns(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	patterns, err := h.recommendations.Patterns(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to extract order patterns")
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": patterns})
}
