package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/aquaflow/backend/internal/models"
)

// Delivery times at or under fastDeliveryMinutes score 10, and scores
// fall linearly to 0 at slowDeliveryMinutes.
const (
	fastDeliveryMinutes = 5.0
	slowDeliveryMinutes = 60.0
)

// SupplierMatcher scores suppliers against a user's inferred preferences
type SupplierMatcher struct {
	suppliers SupplierReader
}

func NewSupplierMatcher(suppliers SupplierReader) *SupplierMatcher {
	return &SupplierMatcher{suppliers: suppliers}
}

type matchFactor struct {
	label  string
	score  float64
	weight float64
}

// Match scores every supplier serving the snapshot's area on a 0-10 scale.
// Users in the unknown area are matched against all suppliers.
func (m *SupplierMatcher) Match(ctx context.Context, snap engine.Snapshot) ([]engine.SupplierMatch, error) {
	area := snap.Profile.Area
	if area == engine.UnknownArea {
		area = ""
	}
	suppliers, err := m.suppliers.ListSuppliers(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	cheapest := 0.0
	for _, s := range suppliers {
		if s.PricePerJar > 0 && (cheapest == 0 || s.PricePerJar < cheapest) {
			cheapest = s.PricePerJar
		}
	}

	matches := make([]engine.SupplierMatch, 0, len(suppliers))
	for _, s := range suppliers {
		matches = append(matches, scoreSupplier(s, snap.Preferences, cheapest))
	}
	return matches, nil
}

func scoreSupplier(s models.Supplier, prefs engine.UserPreferences, cheapest float64) engine.SupplierMatch {
	factors := supplierFactors(s, prefs, cheapest)

	var total, weights float64
	for _, f := range factors {
		total += f.score * f.weight
		weights += f.weight
	}
	score := 0.0
	if weights > 0 {
		score = math.Round(total/weights*10) / 10
	}

	return engine.SupplierMatch{
		ID:          s.ID,
		Name:        s.Name,
		MatchScore:  score,
		StrongPoint: strongPoint(factors),
		Reasoning:   matchReasoning(s, prefs),
	}
}

func supplierFactors(s models.Supplier, prefs engine.UserPreferences, cheapest float64) []matchFactor {
	speedWeight, priceWeight := 1.0, 1.0
	if prefs.DeliveryTimePreference == engine.PreferFastest {
		speedWeight = 2
	} else {
		priceWeight = 2
	}

	factors := []matchFactor{
		{"quality", bounded(s.QualityScore), 1 + prefs.QualityPriority/5},
		{"speed", deliveryScore(s.AvgDeliveryMinutes), speedWeight},
		{"reliability", bounded(s.ReliabilityScore), 1},
		{"service", bounded(s.SatisfactionRating * 2), 1},
	}
	if cheapest > 0 && s.PricePerJar > 0 {
		factors = append(factors, matchFactor{"price", bounded(10 * cheapest / s.PricePerJar), priceWeight})
	}
	if prefs.SustainabilityFocus {
		eco := 0.0
		if s.EcoCertified {
			eco = 10
		}
		factors = append(factors, matchFactor{"sustainability", eco, 2})
	}
	return factors
}

// strongPoint names the best weighted factor, joined with the runner-up
// when the two are close
func strongPoint(factors []matchFactor) string {
	best, second := -1, -1
	for i, f := range factors {
		switch {
		case best < 0 || f.score*f.weight > factors[best].score*factors[best].weight:
			best, second = i, best
		case second < 0 || f.score*f.weight > factors[second].score*factors[second].weight:
			second = i
		}
	}
	if best < 0 {
		return "service"
	}
	if second >= 0 && factors[second].score >= 8 && factors[best].score-factors[second].score <= 0.5 {
		return factors[best].label + " and " + factors[second].label
	}
	return factors[best].label
}

func matchReasoning(s models.Supplier, prefs engine.UserPreferences) string {
	var parts []string
	if prefs.QualityPriority >= 5 {
		parts = append(parts, fmt.Sprintf("Matches your preference for quality (%.1f/10)", s.QualityScore))
	} else {
		parts = append(parts, fmt.Sprintf("Quality score %.1f/10", s.QualityScore))
	}
	if s.AvgDeliveryMinutes > 0 {
		if prefs.DeliveryTimePreference == engine.PreferFastest {
			parts = append(parts, fmt.Sprintf("fast delivery (avg %.0f mins)", s.AvgDeliveryMinutes))
		} else {
			parts = append(parts, fmt.Sprintf("avg delivery %.0f mins", s.AvgDeliveryMinutes))
		}
	}
	reason := strings.Join(parts, " and ") + "."
	if prefs.SustainabilityFocus && s.EcoCertified {
		reason += " Eco-certified operations."
	}
	if certs := s.CertificationList(); len(certs) > 0 {
		reason += " Certified: " + strings.Join(certs, ", ") + "."
	}
	return reason
}

func deliveryScore(minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	return bounded(10 * (slowDeliveryMinutes - minutes) / (slowDeliveryMinutes - fastDeliveryMinutes))
}

func bounded(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}
