package engine

import "time"

// DeliveryType values carried on orders
const (
	DeliveryStandard = "standard"
	DeliveryExpress  = "express"
)

// Delivery time preferences
const (
	PreferFastest  = "fastest"
	PreferCheapest = "cheapest"
)

// UnknownBrand is used for line items without a brand
const UnknownBrand = "Unknown"

// LineItem is a single product line on an order
type LineItem struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Brand     string  `json:"brand"`
	Size      string  `json:"size"`
}

// Order is a historical order as read from the order history store.
// A zero CreatedAt means the timestamp is missing.
type Order struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	SupplierID      string     `json:"supplierId"`
	CreatedAt       time.Time  `json:"createdAt"`
	Items           []LineItem `json:"items"`
	Total           float64    `json:"total"`
	DeliveryType    string     `json:"deliveryType"`
	QualityPriority bool       `json:"qualityPriority"`
}

// Profile holds the stored user fields the engine reads
type Profile struct {
	EcoMode   bool    `json:"ecoMode"`
	Area      string  `json:"area"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ProductPreference aggregates one product inside an order pattern
type ProductPreference struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Frequency   int    `json:"frequency"`
	Brand       string `json:"brand"`
	Size        string `json:"size"`
}

// OrderPattern is a recurring (weekday, time bucket) group of orders
type OrderPattern struct {
	DayOfWeek  int                 `json:"dayOfWeek"`
	TimeBucket int                 `json:"timeBucket"`
	Hour       int                 `json:"timeOfDay"`
	Frequency  int                 `json:"frequency"`
	Products   []ProductPreference `json:"products"`
	SupplierID string              `json:"supplier"`
	OrderValue float64             `json:"orderValue"`
}

// PriceRange is the inferred acceptable order value range
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// UserPreferences is inferred from order history and the stored profile
type UserPreferences struct {
	PreferredBrands        []string   `json:"preferredBrands"`
	PriceRange             PriceRange `json:"priceRange"`
	DeliveryTimePreference string     `json:"deliveryTimePreference"`
	QualityPriority        float64    `json:"qualityPriority"`
	SustainabilityFocus    bool       `json:"sustainabilityFocus"`
}

// Snapshot is everything the generator needs about one user
type Snapshot struct {
	UserID            string          `json:"userId"`
	Patterns          []OrderPattern  `json:"orderHistory"`
	Preferences       UserPreferences `json:"preferences"`
	Profile           Profile         `json:"location"`
	CurrentSupplierID string          `json:"currentSupplierId"`
	OrderCount        int             `json:"orderCount"`
}

// AreaProduct is a precomputed area popularity row
type AreaProduct struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Brand                string  `json:"brand"`
	PopularityPercentage float64 `json:"popularityPercentage"`
	AvgRating            float64 `json:"avgRating"`
	QualityScore         float64 `json:"qualityScore"`
	BestSupplierID       string  `json:"bestSupplierId"`
}

// SupplierMatch is a supplier scored against a user's preferences
type SupplierMatch struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	MatchScore  float64 `json:"matchScore"`
	StrongPoint string  `json:"strongPoint"`
	Reasoning   string  `json:"reasoning"`
}

// Kind discriminates recommendations
type Kind string

const (
	KindSubscription Kind = "subscription"
	KindProduct      Kind = "product"
	KindSupplier     Kind = "supplier"
	KindTiming       Kind = "timing"
	KindBulk         Kind = "bulk"
)

// Priority is the coarse urgency tier used ahead of confidence when ranking
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight returns the ranking multiplier of the tier
func (p Priority) Weight() float64 {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ActionType tells the UI which handler to dispatch a recommendation to
type ActionType string

const (
	ActionSubscribe      ActionType = "subscribe"
	ActionOrder          ActionType = "order"
	ActionSwitchSupplier ActionType = "switch_supplier"
)

// Action is the kind-specific payload attached to a recommendation
type Action struct {
	Type             ActionType          `json:"type"`
	Frequency        string              `json:"frequency,omitempty"`
	DayOfWeek        *int                `json:"dayOfWeek,omitempty"`
	TimeBucket       *int                `json:"timeBucket,omitempty"`
	Hour             *int                `json:"timeOfDay,omitempty"`
	Products         []ProductPreference `json:"products,omitempty"`
	ProductID        string              `json:"productId,omitempty"`
	SupplierID       string              `json:"supplierId,omitempty"`
	Bulk             bool                `json:"bulk,omitempty"`
	EstimatedSavings int64               `json:"estimatedSavings,omitempty"`
}

// Recommendation is a single ranked suggestion.
// ID is a stable key built from the kind and its subject identifiers.
type Recommendation struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"`
	Reasoning   string    `json:"reasoning"`
	Priority    Priority  `json:"priority"`
	ValidUntil  time.Time `json:"validUntil"`
	Action      Action    `json:"action"`
}

// RankScore is the value recommendations are sorted by
func (r Recommendation) RankScore() float64 {
	return r.Priority.Weight() * r.Confidence
}

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayName returns the English weekday name for 0-6
func DayName(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return dayNames[day]
}

func intPtr(v int) *int {
	return &v
}
