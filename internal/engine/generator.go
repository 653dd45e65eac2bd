package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Validity windows per recommendation kind
const (
	SubscriptionValidity = 7 * 24 * time.Hour
	ProductValidity      = 14 * 24 * time.Hour
	SupplierValidity     = 30 * 24 * time.Hour
	TimingValidity       = 2 * time.Hour
	BulkValidity         = 30 * 24 * time.Hour
)

const (
	subscriptionMinFrequency = 3
	timingMinFrequency       = 2
	timingWindowHours        = 2
	maxSupplierSuggestions   = 2
	bulkSavingsRate          = 0.3

	// DefaultBulkSpendThreshold is in rupees per month
	DefaultBulkSpendThreshold = 500.0
)

// AggregateSource provides area and supplier aggregates the generator cannot
// derive from a user's own history.
type AggregateSource interface {
	AreaPopularProducts(ctx context.Context, area string) ([]AreaProduct, error)
	MatchedSuppliers(ctx context.Context, snapshot Snapshot) ([]SupplierMatch, error)
}

// GeneratorConfig tunes a Generator. Zero values fall back to defaults.
type GeneratorConfig struct {
	Location           *time.Location
	BulkSpendThreshold float64
	Now                func() time.Time
	Logger             *zap.Logger
}

// Generator turns a snapshot into a ranked list of recommendations
type Generator struct {
	source        AggregateSource
	loc           *time.Location
	bulkThreshold float64
	now           func() time.Time
	logger        *zap.Logger
}

// NewGenerator creates a generator reading aggregates from source
func NewGenerator(source AggregateSource, cfg GeneratorConfig) *Generator {
	g := &Generator{
		source:        source,
		loc:           cfg.Location,
		bulkThreshold: cfg.BulkSpendThreshold,
		now:           cfg.Now,
		logger:        cfg.Logger,
	}
	if g.loc == nil {
		g.loc = time.UTC
	}
	if g.bulkThreshold <= 0 {
		g.bulkThreshold = DefaultBulkSpendThreshold
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g
}

type subGenerator struct {
	name string
	run  func(ctx context.Context, s Snapshot, now time.Time) ([]Recommendation, error)
}

// Generate runs every sub-generator, ranks the combined output and collapses
// duplicate ids. A failing sub-generator contributes nothing.
func (g *Generator) Generate(ctx context.Context, s Snapshot) []Recommendation {
	if s.OrderCount == 0 {
		return []Recommendation{}
	}

	now := g.now().In(g.loc)
	subs := []subGenerator{
		{"subscription", g.subscription},
		{"product", g.products},
		{"supplier", g.suppliers},
		{"timing", g.timing},
		{"bulk", g.bulk},
	}

	var recs []Recommendation
	for _, sub := range subs {
		recs = append(recs, g.runIsolated(ctx, sub, s, now)...)
	}

	return Dedupe(Rank(recs))
}

func (g *Generator) runIsolated(ctx context.Context, sub subGenerator, s Snapshot, now time.Time) (out []Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("recommendation generator panicked",
				zap.String("generator", sub.name),
				zap.String("user_id", s.UserID),
				zap.Any("panic", r),
			)
			out = nil
		}
	}()

	recs, err := sub.run(ctx, s, now)
	if err != nil {
		g.logger.Warn("recommendation generator failed",
			zap.String("generator", sub.name),
			zap.String("user_id", s.UserID),
			zap.Error(err),
		)
		return nil
	}
	return recs
}

func (g *Generator) subscription(_ context.Context, s Snapshot, now time.Time) ([]Recommendation, error) {
	var best *OrderPattern
	for i := range s.Patterns {
		p := &s.Patterns[i]
		if p.Frequency >= subscriptionMinFrequency && (best == nil || p.Frequency > best.Frequency) {
			best = p
		}
	}
	if best == nil {
		return nil, nil
	}

	day := DayName(best.DayOfWeek)
	window := BucketLabel(best.TimeBucket)

	return []Recommendation{{
		ID:          fmt.Sprintf("%s:%d:%d", KindSubscription, best.DayOfWeek, best.TimeBucket),
		Kind:        KindSubscription,
		Title:       fmt.Sprintf("You usually order on %ss around %s. Schedule a subscription?", day, window),
		Description: fmt.Sprintf("Save 15%% with automatic %s deliveries. Based on your ordering pattern, you order every %s between %s.", day, day, window),
		Confidence:  math.Min(0.95, float64(best.Frequency)/10),
		Reasoning:   fmt.Sprintf("Detected regular ordering pattern: %d orders on %ss between %s", best.Frequency, day, window),
		Priority:    PriorityHigh,
		ValidUntil:  now.Add(SubscriptionValidity),
		Action: Action{
			Type:       ActionSubscribe,
			Frequency:  "weekly",
			DayOfWeek:  intPtr(best.DayOfWeek),
			TimeBucket: intPtr(best.TimeBucket),
			Hour:       intPtr(best.Hour),
			Products:   copyProducts(best.Products),
		},
	}}, nil
}

func (g *Generator) products(ctx context.Context, s Snapshot, now time.Time) ([]Recommendation, error) {
	if g.source == nil {
		return nil, nil
	}
	area := s.Profile.Area
	popular, err := g.source.AreaPopularProducts(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("failed to load area popular products: %w", err)
	}

	preferred := make(map[string]bool, len(s.Preferences.PreferredBrands))
	for _, b := range s.Preferences.PreferredBrands {
		preferred[b] = true
	}

	var recs []Recommendation
	for _, p := range popular {
		if preferred[p.Brand] {
			continue
		}
		priority := PriorityMedium
		if p.PopularityPercentage > 80 {
			priority = PriorityHigh
		}
		recs = append(recs, Recommendation{
			ID:          fmt.Sprintf("%s:%s", KindProduct, p.ID),
			Kind:        KindProduct,
			Title:       fmt.Sprintf("Try %s – %.0f%% of users in your area prefer it", p.Brand, p.PopularityPercentage),
			Description: fmt.Sprintf("%s is highly rated in %s with %.1f★ rating and %.1f/10 quality score.", p.Name, area, p.AvgRating, p.QualityScore),
			Confidence:  clamp(p.PopularityPercentage/100, 0, 1),
			Reasoning:   fmt.Sprintf("Popular in your area (%s) with high satisfaction", area),
			Priority:    priority,
			ValidUntil:  now.Add(ProductValidity),
			Action: Action{
				Type:       ActionOrder,
				ProductID:  p.ID,
				SupplierID: p.BestSupplierID,
			},
		})
	}
	return recs, nil
}

func (g *Generator) suppliers(ctx context.Context, s Snapshot, now time.Time) ([]Recommendation, error) {
	if g.source == nil {
		return nil, nil
	}
	matches, err := g.source.MatchedSuppliers(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to load matched suppliers: %w", err)
	}

	candidates := make([]SupplierMatch, 0, len(matches))
	for _, m := range matches {
		if m.ID == s.CurrentSupplierID {
			continue
		}
		candidates = append(candidates, m)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})
	if len(candidates) > maxSupplierSuggestions {
		candidates = candidates[:maxSupplierSuggestions]
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, m := range candidates {
		priority := PriorityMedium
		if m.MatchScore > 8 {
			priority = PriorityHigh
		}
		recs = append(recs, Recommendation{
			ID:          fmt.Sprintf("%s:%s", KindSupplier, m.ID),
			Kind:        KindSupplier,
			Title:       fmt.Sprintf("Switch to %s for better %s", m.Name, m.StrongPoint),
			Description: fmt.Sprintf("%s scores %.1f/10 for your preferences. %s", m.Name, m.MatchScore, m.Reasoning),
			Confidence:  clamp(m.MatchScore/10, 0, 1),
			Reasoning:   m.Reasoning,
			Priority:    priority,
			ValidUntil:  now.Add(SupplierValidity),
			Action: Action{
				Type:       ActionSwitchSupplier,
				SupplierID: m.ID,
			},
		})
	}
	return recs, nil
}

func (g *Generator) timing(_ context.Context, s Snapshot, now time.Time) ([]Recommendation, error) {
	day, hour := int(now.Weekday()), now.Hour()

	for _, p := range s.Patterns {
		if p.DayOfWeek != day || p.Frequency < timingMinFrequency {
			continue
		}
		if hoursFromBucket(hour, p.TimeBucket) > timingWindowHours {
			continue
		}

		return []Recommendation{{
			ID:          fmt.Sprintf("%s:%d:%d", KindTiming, p.DayOfWeek, p.TimeBucket),
			Kind:        KindTiming,
			Title:       "Perfect timing! You usually order around now",
			Description: fmt.Sprintf("Based on your pattern, you typically order around %02d:00 on %ss. Quick reorder?", hour, DayName(day)),
			Confidence:  0.8,
			Reasoning:   fmt.Sprintf("Historical pattern shows %d orders at similar time", p.Frequency),
			Priority:    PriorityMedium,
			ValidUntil:  now.Add(TimingValidity),
			Action: Action{
				Type:     ActionOrder,
				Products: copyProducts(p.Products),
			},
		}}, nil
	}
	return nil, nil
}

// hoursFromBucket is 0 inside the bucket window, otherwise the distance in
// hours to the nearest hour of the window
func hoursFromBucket(hour, bucket int) int {
	start, end := BucketWindow(bucket)
	switch {
	case hour < start:
		return start - hour
	case hour >= end:
		return hour - (end - 1)
	default:
		return 0
	}
}

func (g *Generator) bulk(_ context.Context, s Snapshot, now time.Time) ([]Recommendation, error) {
	spend := ProjectedMonthlySpend(s.Patterns)
	if spend <= g.bulkThreshold {
		return nil, nil
	}

	savings := int64(math.Round(spend * bulkSavingsRate))
	return []Recommendation{{
		ID:          string(KindBulk),
		Kind:        KindBulk,
		Title:       fmt.Sprintf("Save ₹%d/month with bulk orders", savings),
		Description: fmt.Sprintf("You spend ₹%.0f/month on water. Bulk monthly orders can save you 30%% (₹%d).", spend, savings),
		Confidence:  0.9,
		Reasoning:   fmt.Sprintf("High monthly spend of ₹%.0f qualifies for bulk discounts", spend),
		Priority:    PriorityHigh,
		ValidUntil:  now.Add(BulkValidity),
		Action: Action{
			Type:             ActionOrder,
			Bulk:             true,
			EstimatedSavings: savings,
		},
	}}, nil
}

// ProjectedMonthlySpend sums pattern value weighted by frequency
func ProjectedMonthlySpend(patterns []OrderPattern) float64 {
	var total float64
	for _, p := range patterns {
		total += p.OrderValue * float64(p.Frequency)
	}
	return total
}

// Rank sorts by priority weight times confidence, descending. Ties keep input order.
func Rank(recs []Recommendation) []Recommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].RankScore() > recs[j].RankScore()
	})
	return recs
}

// Dedupe keeps the first recommendation for each id
func Dedupe(recs []Recommendation) []Recommendation {
	seen := make(map[string]bool, len(recs))
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

func copyProducts(in []ProductPreference) []ProductPreference {
	out := make([]ProductPreference, len(in))
	copy(out, in)
	return out
}
