package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/aquaflow/backend/internal/models"
	"github.com/aquaflow/backend/internal/service"
	"github.com/aquaflow/backend/internal/store"
	"github.com/aquaflow/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

const testUser = "user-1"

// monday is 2026-10-19 09:00 UTC, outside every Friday fixture window
var monday = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db         *gorm.DB
	orders     *store.OrderStore
	profiles   *store.ProfileStore
	aggregates *store.AggregateStore
	suppliers  *store.SupplierStore
	dismissals *service.MemoryDismissalStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	return &fixture{
		db:         db,
		orders:     store.NewOrderStore(db),
		profiles:   store.NewProfileStore(db),
		aggregates: store.NewAggregateStore(db),
		suppliers:  store.NewSupplierStore(db),
		dismissals: service.NewMemoryDismissalStore(time.Hour),
	}
}

func (f *fixture) service(logger *zap.Logger) *service.RecommendationService {
	return service.NewRecommendationService(f.orders, f.profiles, f.aggregates, f.suppliers, f.dismissals,
		service.RecommendationConfig{
			Location: time.UTC,
			Now:      func() time.Time { return monday },
			Logger:   logger,
		})
}

// seedFridayHabit stores four weekly Friday afternoon orders of two 20L jars
func (f *fixture) seedFridayHabit(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for week := 0; week < 4; week++ {
		placed := time.Date(2026, time.October, 16, 14, 10*week, 0, 0, time.UTC).AddDate(0, 0, -7*week)
		require.NoError(t, f.orders.CreateOrder(ctx, &models.Order{
			UserID:     testUser,
			SupplierID: "supplier_1",
			Total:      100,
			PlacedAt:   &placed,
			Items: []models.OrderItem{
				{ProductID: "aqua_20l", Name: "Aqua 20L Jar", Quantity: 2, Price: 50, Brand: "Aqua", Size: "20L"},
			},
		}))
	}
}

func (f *fixture) seedArea(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.profiles.SaveProfile(ctx, &models.UserProfile{UserID: testUser, Area: "Indiranagar"}))
	require.NoError(t, f.aggregates.UpsertAreaProduct(ctx, &models.AreaProductPopularity{
		Area: "Indiranagar", ProductID: "kinley_20l", Name: "Kinley 20L Jar", Brand: "Kinley",
		PopularityPercentage: 90, AvgRating: 4.7, QualityScore: 9.2, BestSupplierID: "supplier_premium",
	}))
	require.NoError(t, f.aggregates.UpsertAreaProduct(ctx, &models.AreaProductPopularity{
		Area: "Indiranagar", ProductID: "aqua_20l", Name: "Aqua 20L Jar", Brand: "Aqua",
		PopularityPercentage: 60, AvgRating: 4.1, QualityScore: 8,
	}))
	for _, s := range []models.Supplier{
		{ID: "supplier_1", Name: "AquaFresh", Area: "Indiranagar", QualityScore: 7, ReliabilityScore: 7, SatisfactionRating: 3.5, AvgDeliveryMinutes: 30, PricePerJar: 45},
		{ID: "supplier_premium", Name: "PureFlow Premium", Area: "Indiranagar", QualityScore: 9.5, ReliabilityScore: 9, SatisfactionRating: 4.8, AvgDeliveryMinutes: 8, PricePerJar: 60},
	} {
		require.NoError(t, f.suppliers.CreateSupplier(ctx, &s))
	}
}

func ids(recs []engine.Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestRecommendationsFridayHabit(t *testing.T) {
	f := newFixture(t)
	f.seedFridayHabit(t)
	f.seedArea(t)
	svc := f.service(nil)
	ctx := context.Background()

	recs, err := svc.Recommendations(ctx, testUser, "")
	require.NoError(t, err)

	got := ids(recs)
	assert.ElementsMatch(t, []string{
		"subscription:5:3",
		"product:kinley_20l",
		"supplier:supplier_premium",
		"bulk",
	}, got)

	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].RankScore(), recs[i].RankScore())
	}

	for _, r := range recs {
		switch r.Kind {
		case engine.KindSubscription:
			require.NotNil(t, r.Action.DayOfWeek)
			assert.Equal(t, int(time.Friday), *r.Action.DayOfWeek)
			assert.Equal(t, 8, r.Action.Products[0].Quantity)
		case engine.KindBulk:
			// pattern value 400 across 4 orders projects 1600 a month
			assert.Equal(t, int64(480), r.Action.EstimatedSavings)
		}
	}
}

func TestDismissHidesRecommendationForSession(t *testing.T) {
	f := newFixture(t)
	f.seedFridayHabit(t)
	svc := f.service(nil)
	ctx := context.Background()

	require.NoError(t, svc.Dismiss(ctx, "session-a", "bulk"))

	hidden, err := svc.Recommendations(ctx, testUser, "session-a")
	require.NoError(t, err)
	assert.NotContains(t, ids(hidden), "bulk")

	other, err := svc.Recommendations(ctx, testUser, "session-b")
	require.NoError(t, err)
	assert.Contains(t, ids(other), "bulk")

	assert.ErrorIs(t, svc.Dismiss(ctx, "", "bulk"), service.ErrMissingSession)
}

func TestRecommendationsWithoutHistory(t *testing.T) {
	f := newFixture(t)
	f.seedArea(t)

	recs, err := f.service(nil).Recommendations(context.Background(), "newcomer", "session-a")
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestSnapshotWithoutProfileUsesUnknownArea(t *testing.T) {
	f := newFixture(t)
	f.seedFridayHabit(t)

	snap, err := f.service(nil).Snapshot(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, engine.UnknownArea, snap.Profile.Area)
	assert.Equal(t, 4, snap.OrderCount)
	assert.Equal(t, "supplier_1", snap.CurrentSupplierID)
}

func TestPreferencesAndPatterns(t *testing.T) {
	f := newFixture(t)
	f.seedFridayHabit(t)
	svc := f.service(nil)
	ctx := context.Background()

	prefs, err := svc.Preferences(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aqua"}, prefs.PreferredBrands)
	assert.Equal(t, engine.PreferCheapest, prefs.DeliveryTimePreference)

	patterns, err := svc.Patterns(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, 4, patterns[0].Frequency)

	empty, err := svc.Patterns(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSnapshotLogsSkippedOrders(t *testing.T) {
	f := newFixture(t)
	f.seedFridayHabit(t)
	require.NoError(t, f.orders.CreateOrder(context.Background(), &models.Order{UserID: testUser, Total: 40}))

	core, logs := observer.New(zap.WarnLevel)
	snap, err := f.service(zap.New(core)).Snapshot(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, 5, snap.OrderCount)
	require.Len(t, snap.Patterns, 1)
	assert.Equal(t, 4, snap.Patterns[0].Frequency)
	assert.Equal(t, 1, logs.FilterMessage("skipped malformed orders").Len())
}

type failingOrders struct{}

func (failingOrders) RecentOrders(context.Context, string, int) ([]models.Order, error) {
	return nil, errors.New("connection refused")
}

func TestRecommendationsPropagatesStoreErrors(t *testing.T) {
	f := newFixture(t)
	svc := service.NewRecommendationService(failingOrders{}, f.profiles, f.aggregates, f.suppliers, nil,
		service.RecommendationConfig{})

	_, err := svc.Recommendations(context.Background(), testUser, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load order history")
}
