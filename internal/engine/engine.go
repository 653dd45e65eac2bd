// Package engine holds the pure recommendation and quality-scoring logic.
// Nothing in this package performs I/O; callers fetch order history and
// aggregates and pass them in as plain values.
package engine

import (
	"sort"
	"time"
)

// DefaultOrderLimit is how many of the most recent orders are analyzed
const DefaultOrderLimit = 50

// UnknownArea is used when a user has no stored area
const UnknownArea = "Unknown"

// BuildSnapshot analyzes up to limit of the most recent orders of a user.
// The returned error lists skipped orders only; the snapshot is always usable.
func BuildSnapshot(userID string, orders []Order, profile *Profile, loc *time.Location, limit int) (Snapshot, error) {
	recent := MostRecent(orders, limit)

	patterns, skipped := ExtractPatterns(recent, loc)
	snap := Snapshot{
		UserID:      userID,
		Patterns:    patterns,
		Preferences: InferPreferences(recent, profile),
		Profile:     Profile{Area: UnknownArea},
		OrderCount:  len(recent),
	}
	if profile != nil {
		snap.Profile = *profile
		if snap.Profile.Area == "" {
			snap.Profile.Area = UnknownArea
		}
	}
	if len(recent) > 0 {
		snap.CurrentSupplierID = recent[0].SupplierID
	}
	return snap, skipped
}

// MostRecent returns a newest-first copy of orders capped at limit.
// Orders without a timestamp sort last. limit <= 0 means DefaultOrderLimit.
func MostRecent(orders []Order, limit int) []Order {
	if limit <= 0 {
		limit = DefaultOrderLimit
	}
	out := make([]Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
