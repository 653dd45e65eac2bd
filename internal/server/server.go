package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/aquaflow/backend/config"
	"github.com/aquaflow/backend/internal/api"
	"github.com/aquaflow/backend/internal/middleware"
	"github.com/aquaflow/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the services the HTTP layer is built from
type Dependencies struct {
	DB              *gorm.DB
	Redis           redis.Cmdable // optional; nil disables rate limiting
	Tokens          middleware.TokenValidator
	Recommendations service.IRecommendationService
	Quality         service.IQualityService
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New wires middleware and routes
func New(cfg *config.Config, deps Dependencies, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	api.NewHealthHandler(deps.DB, deps.Redis).RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	api.NewQualityHandler(deps.Quality, logger).RegisterRoutes(v1)

	var limiter *middleware.RateLimiter
	if deps.Redis != nil {
		limiter = middleware.NewAPIRateLimiter(deps.Redis, cfg.RateLimitPerMinute, logger)
	}
	me := v1.Group("/me", middleware.AuthMiddleware(deps.Tokens), limiter.RateLimitMiddleware())
	api.NewRecommendationHandler(deps.Recommendations, cfg.RefreshInterval, logger).RegisterRoutes(me)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
