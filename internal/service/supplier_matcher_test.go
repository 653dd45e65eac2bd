package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/aquaflow/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSuppliers struct {
	suppliers []models.Supplier
	err       error
	areas     []string
}

func (s *stubSuppliers) ListSuppliers(_ context.Context, area string) ([]models.Supplier, error) {
	s.areas = append(s.areas, area)
	return s.suppliers, s.err
}

func (s *stubSuppliers) GetSupplier(_ context.Context, id string) (*models.Supplier, error) {
	for i := range s.suppliers {
		if s.suppliers[i].ID == id {
			return &s.suppliers[i], nil
		}
	}
	return nil, errors.New("not found")
}

func premium() models.Supplier {
	return models.Supplier{ID: "premium", Name: "PureFlow Premium", QualityScore: 9.5, ReliabilityScore: 9,
		SatisfactionRating: 4.8, AvgDeliveryMinutes: 8, PricePerJar: 60}
}

func budget() models.Supplier {
	return models.Supplier{ID: "budget", Name: "ValueWater", QualityScore: 6, ReliabilityScore: 7,
		SatisfactionRating: 3.5, AvgDeliveryMinutes: 45, PricePerJar: 35}
}

func eco() models.Supplier {
	return models.Supplier{ID: "eco", Name: "EcoWater Solutions", QualityScore: 8, ReliabilityScore: 8,
		SatisfactionRating: 4.2, AvgDeliveryMinutes: 20, PricePerJar: 50, EcoCertified: true}
}

func matchByID(matches []engine.SupplierMatch) map[string]engine.SupplierMatch {
	out := make(map[string]engine.SupplierMatch, len(matches))
	for _, m := range matches {
		out[m.ID] = m
	}
	return out
}

func TestMatchScoresAreBounded(t *testing.T) {
	src := &stubSuppliers{suppliers: []models.Supplier{premium(), budget(), eco(), {ID: "empty", Name: "Blank"}}}
	matches, err := NewSupplierMatcher(src).Match(context.Background(), engine.Snapshot{
		Profile:     engine.Profile{Area: "Indiranagar"},
		Preferences: engine.UserPreferences{QualityPriority: 10, DeliveryTimePreference: engine.PreferFastest, SustainabilityFocus: true},
	})
	require.NoError(t, err)
	require.Len(t, matches, 4)
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.MatchScore, 0.0)
		assert.LessOrEqual(t, m.MatchScore, 10.0)
		assert.NotEmpty(t, m.StrongPoint)
		assert.NotEmpty(t, m.Reasoning)
	}
	assert.Equal(t, []string{"Indiranagar"}, src.areas)
}

func TestMatchFavorsQualityForQualityFocusedUsers(t *testing.T) {
	src := &stubSuppliers{suppliers: []models.Supplier{premium(), budget()}}
	matches, err := NewSupplierMatcher(src).Match(context.Background(), engine.Snapshot{
		Profile:     engine.Profile{Area: "Indiranagar"},
		Preferences: engine.UserPreferences{QualityPriority: 10, DeliveryTimePreference: engine.PreferFastest},
	})
	require.NoError(t, err)

	byID := matchByID(matches)
	assert.Greater(t, byID["premium"].MatchScore, byID["budget"].MatchScore)
	assert.Contains(t, byID["premium"].Reasoning, "Matches your preference for quality (9.5/10)")
	assert.Contains(t, byID["premium"].StrongPoint, "quality")
}

func TestMatchRewardsEcoCertificationWhenSustainable(t *testing.T) {
	src := &stubSuppliers{suppliers: []models.Supplier{eco(), budget()}}
	m := NewSupplierMatcher(src)
	ctx := context.Background()

	plain, err := m.Match(ctx, engine.Snapshot{Profile: engine.Profile{Area: "A"}, Preferences: engine.UserPreferences{QualityPriority: 1}})
	require.NoError(t, err)
	green, err := m.Match(ctx, engine.Snapshot{Profile: engine.Profile{Area: "A"}, Preferences: engine.UserPreferences{QualityPriority: 1, SustainabilityFocus: true}})
	require.NoError(t, err)

	plainEco, greenEco := matchByID(plain)["eco"], matchByID(green)["eco"]
	assert.Greater(t, greenEco.MatchScore, plainEco.MatchScore)
	assert.Equal(t, "sustainability", greenEco.StrongPoint)
	assert.Contains(t, greenEco.Reasoning, "Eco-certified")
	assert.NotContains(t, plainEco.Reasoning, "Eco-certified")
}

func TestMatchUnknownAreaListsAllSuppliers(t *testing.T) {
	src := &stubSuppliers{}
	_, err := NewSupplierMatcher(src).Match(context.Background(), engine.Snapshot{Profile: engine.Profile{Area: engine.UnknownArea}})
	require.NoError(t, err)
	assert.Equal(t, []string{""}, src.areas)
}

func TestMatchPropagatesErrors(t *testing.T) {
	src := &stubSuppliers{err: errors.New("timeout")}
	_, err := NewSupplierMatcher(src).Match(context.Background(), engine.Snapshot{})
	assert.Error(t, err)
}

func TestDeliveryScore(t *testing.T) {
	assert.Equal(t, 10.0, deliveryScore(5))
	assert.Equal(t, 10.0, deliveryScore(1))
	assert.Equal(t, 0.0, deliveryScore(60))
	assert.Equal(t, 0.0, deliveryScore(0))
	assert.InDelta(t, 5.0, deliveryScore(32.5), 1e-9)
}

func TestStrongPointJoinsCloseFactors(t *testing.T) {
	assert.Equal(t, "quality and speed", strongPoint([]matchFactor{
		{"quality", 9.5, 1}, {"speed", 9.2, 1}, {"price", 5, 1},
	}))
	assert.Equal(t, "quality", strongPoint([]matchFactor{
		{"quality", 9.5, 1}, {"speed", 7, 1},
	}))
	assert.Equal(t, "service", strongPoint(nil))
}
