package engine

import "math"

const (
	maxPreferredBrands = 3
	fastestThreshold   = 0.6
	priceRangeLow      = 0.7
	priceRangeHigh     = 1.5
)

// InferPreferences derives brand affinity, price band, delivery preference,
// quality priority and sustainability focus. profile may be nil.
func InferPreferences(orders []Order, profile *Profile) UserPreferences {
	prefs := UserPreferences{
		PreferredBrands:        []string{},
		DeliveryTimePreference: PreferCheapest,
		QualityPriority:        1,
	}
	if profile != nil {
		prefs.SustainabilityFocus = profile.EcoMode
	}
	if len(orders) == 0 {
		return prefs
	}

	var (
		brandCounts  = make(map[string]int)
		brandOrder   []string
		totalSpent   float64
		expressCount int
		qualityCount int
	)

	for _, o := range orders {
		totalSpent += o.Total
		for _, item := range o.Items {
			brand := orDefault(item.Brand, UnknownBrand)
			if _, ok := brandCounts[brand]; !ok {
				brandOrder = append(brandOrder, brand)
			}
			brandCounts[brand]++
		}
		if o.DeliveryType == DeliveryExpress {
			expressCount++
		}
		if o.QualityPriority {
			qualityCount++
		}
	}

	n := float64(len(orders))
	avg := totalSpent / n

	prefs.PreferredBrands = topBrands(brandOrder, brandCounts, maxPreferredBrands)
	prefs.PriceRange = PriceRange{
		Min: math.Max(0, avg*priceRangeLow),
		Max: math.Max(0, avg*priceRangeHigh),
	}
	if float64(expressCount)/n >= fastestThreshold {
		prefs.DeliveryTimePreference = PreferFastest
	}
	prefs.QualityPriority = clamp(float64(qualityCount)/n*10, 1, 10)

	return prefs
}

// topBrands selects up to limit brands by count; ties keep first-seen order
func topBrands(seen []string, counts map[string]int, limit int) []string {
	out := make([]string, 0, limit)
	picked := make(map[string]bool, limit)
	for len(out) < limit {
		best, bestCount := "", 0
		for _, b := range seen {
			if picked[b] {
				continue
			}
			if c := counts[b]; c > bestCount {
				best, bestCount = b, c
			}
		}
		if bestCount == 0 {
			break
		}
		picked[best] = true
		out = append(out, best)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
