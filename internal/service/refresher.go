package service

import (
	"context"
	"time"

	"github.com/aquaflow/backend/internal/engine"
	"go.uber.org/zap"
)

// DefaultRefreshInterval is how often subscribers receive a recomputed list
const DefaultRefreshInterval = 5 * time.Minute

// Refresher recomputes a user's recommendations on a fixed interval
type Refresher struct {
	recommendations IRecommendationService
	interval        time.Duration
	logger          *zap.Logger
}

func NewRefresher(recommendations IRecommendationService, interval time.Duration, logger *zap.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{recommendations: recommendations, interval: interval, logger: logger}
}

// Run delivers a list immediately and then once per interval until ctx is
// done or deliver fails. A failed recompute is logged and skipped.
func (r *Refresher) Run(ctx context.Context, userID, sessionID string, deliver func([]engine.Recommendation) error) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		recs, err := r.recommendations.Recommendations(ctx, userID, sessionID)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			r.logger.Warn("recommendation refresh failed", zap.String("user_id", userID), zap.Error(err))
		default:
			if err := deliver(recs); err != nil {
				r.logger.Debug("subscriber stopped", zap.String("user_id", userID), zap.Error(err))
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
