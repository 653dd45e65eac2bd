package engine

import (
	"errors"
	"fmt"
	"time"
)

// HoursPerBucket is the width of a time-of-day bucket
const HoursPerBucket = 4

type patternKey struct {
	day    int
	bucket int
}

type patternAcc struct {
	pattern      OrderPattern
	productIndex map[string]int
	suppliers    map[string]int
	supplierSeen []string
}

// ExtractPatterns groups orders by weekday and four-hour bucket in loc.
// Orders without a timestamp are skipped; they are reported in the returned
// error while the patterns of the remaining orders are still returned.
func ExtractPatterns(orders []Order, loc *time.Location) ([]OrderPattern, error) {
	if loc == nil {
		loc = time.UTC
	}

	var (
		order   []patternKey
		accs    = make(map[patternKey]*patternAcc)
		skipped []error
	)

	for i, o := range orders {
		if o.CreatedAt.IsZero() {
			skipped = append(skipped, &ValidationError{
				Field:   "createdAt",
				Message: fmt.Sprintf("order %q (index %d) has no timestamp", o.ID, i),
			})
			continue
		}

		at := o.CreatedAt.In(loc)
		key := patternKey{day: int(at.Weekday()), bucket: at.Hour() / HoursPerBucket}

		acc, ok := accs[key]
		if !ok {
			acc = &patternAcc{
				pattern: OrderPattern{
					DayOfWeek:  key.day,
					TimeBucket: key.bucket,
					Hour:       at.Hour(),
					Products:   []ProductPreference{},
				},
				productIndex: make(map[string]int),
				suppliers:    make(map[string]int),
			}
			accs[key] = acc
			order = append(order, key)
		}

		acc.pattern.Frequency++
		acc.pattern.OrderValue += o.Total
		acc.addSupplier(o.SupplierID)

		for _, item := range o.Items {
			acc.addItem(item)
		}
	}

	patterns := make([]OrderPattern, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		acc.pattern.SupplierID = acc.dominantSupplier()
		patterns = append(patterns, acc.pattern)
	}

	return patterns, errors.Join(skipped...)
}

func (a *patternAcc) addItem(item LineItem) {
	if idx, ok := a.productIndex[item.ProductID]; ok {
		p := &a.pattern.Products[idx]
		p.Frequency++
		p.Quantity += item.Quantity
		return
	}

	a.productIndex[item.ProductID] = len(a.pattern.Products)
	a.pattern.Products = append(a.pattern.Products, ProductPreference{
		ProductID:   item.ProductID,
		ProductName: item.Name,
		Quantity:    item.Quantity,
		Frequency:   1,
		Brand:       orDefault(item.Brand, UnknownBrand),
		Size:        orDefault(item.Size, "Unknown"),
	})
}

func (a *patternAcc) addSupplier(id string) {
	if id == "" {
		return
	}
	if _, ok := a.suppliers[id]; !ok {
		a.supplierSeen = append(a.supplierSeen, id)
	}
	a.suppliers[id]++
}

// dominantSupplier returns the most frequent supplier, ties going to the first seen
func (a *patternAcc) dominantSupplier() string {
	best, bestCount := "", 0
	for _, id := range a.supplierSeen {
		if c := a.suppliers[id]; c > bestCount {
			best, bestCount = id, c
		}
	}
	return best
}

// BucketWindow returns the [start, end) hours covered by a time bucket
func BucketWindow(bucket int) (start, end int) {
	start = bucket * HoursPerBucket
	return start, start + HoursPerBucket
}

// BucketLabel renders a bucket as "12:00–16:00"
func BucketLabel(bucket int) string {
	start, end := BucketWindow(bucket)
	return fmt.Sprintf("%02d:00–%02d:00", start, end)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
