package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/aquaflow/backend/internal/store"
	"go.uber.org/zap"
)

// RecommendationConfig tunes the recommendation service. Zero values fall
// back to the engine defaults.
type RecommendationConfig struct {
	Location           *time.Location
	OrderLimit         int
	BulkSpendThreshold float64
	Now                func() time.Time
	Logger             *zap.Logger
}

// RecommendationService loads a user's history and runs the engine over it
type RecommendationService struct {
	orders     OrderReader
	profiles   ProfileReader
	dismissals DismissalStore
	generator  *engine.Generator
	loc        *time.Location
	limit      int
	logger     *zap.Logger
}

var _ IRecommendationService = (*RecommendationService)(nil)

// NewRecommendationService wires the engine to its stores. dismissals may be
// nil, in which case nothing is ever filtered.
func NewRecommendationService(
	orders OrderReader,
	profiles ProfileReader,
	areas AreaProductReader,
	suppliers SupplierReader,
	dismissals DismissalStore,
	cfg RecommendationConfig,
) *RecommendationService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	limit := cfg.OrderLimit
	if limit <= 0 {
		limit = engine.DefaultOrderLimit
	}

	source := &aggregateSource{areas: areas, matcher: NewSupplierMatcher(suppliers)}
	return &RecommendationService{
		orders:     orders,
		profiles:   profiles,
		dismissals: dismissals,
		generator: engine.NewGenerator(source, engine.GeneratorConfig{
			Location:           loc,
			BulkSpendThreshold: cfg.BulkSpendThreshold,
			Now:                cfg.Now,
			Logger:             logger.Named("generator"),
		}),
		loc:    loc,
		limit:  limit,
		logger: logger,
	}
}

// Snapshot analyzes the user's most recent orders. Orders without a
// timestamp are skipped and logged.
func (s *RecommendationService) Snapshot(ctx context.Context, userID string) (engine.Snapshot, error) {
	rows, err := s.orders.RecentOrders(ctx, userID, s.limit)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("failed to load order history: %w", err)
	}
	orders := make([]engine.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.ToEngine())
	}

	var profile *engine.Profile
	stored, err := s.profiles.GetProfile(ctx, userID)
	switch {
	case err == nil:
		p := stored.ToEngine()
		profile = &p
	case errors.Is(err, store.ErrNotFound):
		// no stored profile; the engine assumes the unknown area
	default:
		return engine.Snapshot{}, fmt.Errorf("failed to load profile: %w", err)
	}

	snap, skipped := engine.BuildSnapshot(userID, orders, profile, s.loc, s.limit)
	if skipped != nil {
		s.logger.Warn("skipped malformed orders",
			zap.String("user_id", userID),
			zap.Error(skipped),
		)
	}
	return snap, nil
}

func (s *RecommendationService) Preferences(ctx context.Context, userID string) (engine.UserPreferences, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return engine.UserPreferences{}, err
	}
	return snap.Preferences, nil
}

func (s *RecommendationService) Patterns(ctx context.Context, userID string) ([]engine.OrderPattern, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap.Patterns == nil {
		return []engine.OrderPattern{}, nil
	}
	return snap.Patterns, nil
}

// Recommendations generates the ranked list for userID, without the ones
// dismissed in sessionID
func (s *RecommendationService) Recommendations(ctx context.Context, userID, sessionID string) ([]engine.Recommendation, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	recs := s.generator.Generate(ctx, snap)
	if sessionID == "" || s.dismissals == nil || len(recs) == 0 {
		return recs, nil
	}

	dismissed, err := s.dismissals.Dismissed(ctx, sessionID)
	if err != nil {
		s.logger.Warn("failed to load dismissals, returning unfiltered recommendations",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return recs, nil
	}

	out := make([]engine.Recommendation, 0, len(recs))
	for _, r := range recs {
		if !dismissed[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

// Dismiss hides recommendationID for the rest of the session
func (s *RecommendationService) Dismiss(ctx context.Context, sessionID, recommendationID string) error {
	if sessionID == "" {
		return ErrMissingSession
	}
	if s.dismissals == nil {
		return nil
	}
	return s.dismissals.Dismiss(ctx, sessionID, recommendationID)
}

// aggregateSource adapts the stores to the engine's aggregate interface
type aggregateSource struct {
	areas   AreaProductReader
	matcher *SupplierMatcher
}

func (a *aggregateSource) AreaPopularProducts(ctx context.Context, area string) ([]engine.AreaProduct, error) {
	rows, err := a.areas.AreaPopularProducts(ctx, area)
	if err != nil {
		return nil, err
	}
	out := make([]engine.AreaProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToEngine())
	}
	return out, nil
}

func (a *aggregateSource) MatchedSuppliers(ctx context.Context, snap engine.Snapshot) ([]engine.SupplierMatch, error) {
	return a.matcher.Match(ctx, snap)
}
