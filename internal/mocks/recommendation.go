package mocks

import (
	"context"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/stretchr/testify/mock"
)

// MockRecommendationService is a mock implementation of the IRecommendationService interface
type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) Snapshot(ctx context.Context, userID string) (engine.Snapshot, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(engine.Snapshot), args.Error(1)
}

func (m *MockRecommendationService) Preferences(ctx context.Context, userID string) (engine.UserPreferences, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(engine.UserPreferences), args.Error(1)
}

func (m *MockRecommendationService) Patterns(ctx context.Context, userID string) ([]engine.OrderPattern, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]engine.OrderPattern), args.Error(1)
}

func (m *MockRecommendationService) Recommendations(ctx context.Context, userID, sessionID string) ([]engine.Recommendation, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]engine.Recommendation), args.Error(1)
}

func (m *MockRecommendationService) Dismiss(ctx context.Context, sessionID, recommendationID string) error {
	args := m.Called(ctx, sessionID, recommendationID)
	return args.Error(0)
}
