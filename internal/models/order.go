package models

import (
	"time"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is a placed delivery order. PlacedAt is nil for legacy rows
// imported without a timestamp.
type Order struct {
	ID              uuid.UUID   `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID          string      `gorm:"size:64;not null;index:idx_orders_user_placed,priority:1" json:"user_id"`
	SupplierID      string      `gorm:"size:64;index" json:"supplier_id"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total           float64     `gorm:"not null" json:"total"`
	DeliveryType    string      `gorm:"size:20;not null;default:'standard'" json:"delivery_type"`
	QualityPriority bool        `gorm:"not null;default:false" json:"quality_priority"`
	PlacedAt        *time.Time  `gorm:"index:idx_orders_user_placed,priority:2,sort:desc" json:"placed_at"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID string    `gorm:"size:64;not null" json:"product_id"`
	Name      string    `gorm:"size:255" json:"name"`
	Quantity  int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"`
	Brand     string    `gorm:"size:100" json:"brand"`
	Size      string    `gorm:"size:50" json:"size"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.DeliveryType == "" {
		o.DeliveryType = engine.DeliveryStandard
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ToEngine converts the row into the engine's order shape
func (o Order) ToEngine() engine.Order {
	out := engine.Order{
		ID:              o.ID.String(),
		UserID:          o.UserID,
		SupplierID:      o.SupplierID,
		Total:           o.Total,
		DeliveryType:    o.DeliveryType,
		QualityPriority: o.QualityPriority,
		Items:           make([]engine.LineItem, 0, len(o.Items)),
	}
	if o.PlacedAt != nil {
		out.CreatedAt = *o.PlacedAt
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, engine.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Brand:     it.Brand,
			Size:      it.Size,
		})
	}
	return out
}

// UserProfile holds the stored user fields used for recommendations
type UserProfile struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    string         `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	EcoMode   bool           `gorm:"not null;default:false" json:"eco_mode"`
	Area      string         `gorm:"size:100;index" json:"area"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p UserProfile) ToEngine() engine.Profile {
	return engine.Profile{
		EcoMode:   p.EcoMode,
		Area:      p.Area,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}
}
