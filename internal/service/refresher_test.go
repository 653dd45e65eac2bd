package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/aquaflow/backend/internal/mocks"
	"github.com/aquaflow/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRefresherDeliversUntilCancelled(t *testing.T) {
	recs := new(mocks.MockRecommendationService)
	list := []engine.Recommendation{{ID: "bulk", Kind: engine.KindBulk}}
	recs.On("Recommendations", mock.Anything, "user-1", "session-a").Return(list, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries := 0
	err := service.NewRefresher(recs, 5*time.Millisecond, nil).Run(ctx, "user-1", "session-a",
		func(got []engine.Recommendation) error {
			assert.Equal(t, list, got)
			deliveries++
			if deliveries == 3 {
				cancel()
			}
			return nil
		})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, deliveries)
}

func TestRefresherStopsOnDeliverError(t *testing.T) {
	recs := new(mocks.MockRecommendationService)
	recs.On("Recommendations", mock.Anything, "user-1", "").Return([]engine.Recommendation{}, nil)

	closed := errors.New("client gone")
	err := service.NewRefresher(recs, time.Hour, nil).Run(context.Background(), "user-1", "",
		func([]engine.Recommendation) error { return closed })

	assert.ErrorIs(t, err, closed)
	recs.AssertNumberOfCalls(t, "Recommendations", 1)
}

func TestRefresherSkipsFailedRecompute(t *testing.T) {
	recs := new(mocks.MockRecommendationService)
	recs.On("Recommendations", mock.Anything, "user-1", "").Return(nil, errors.New("db down")).Once()
	recs.On("Recommendations", mock.Anything, "user-1", "").Return([]engine.Recommendation{}, nil)

	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	delivered := false
	err := service.NewRefresher(recs, 5*time.Millisecond, zap.New(core)).Run(ctx, "user-1", "",
		func([]engine.Recommendation) error {
			delivered = true
			cancel()
			return nil
		})

	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, delivered)
	assert.Equal(t, 1, logs.FilterMessage("recommendation refresh failed").Len())
}
