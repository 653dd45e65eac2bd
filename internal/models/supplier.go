package models

import (
	"encoding/json"
	"time"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Supplier is a water supplier with its rolling service analytics.
// Scores are on a 0-10 scale, SatisfactionRating on 0-5.
type Supplier struct {
	ID                 string         `gorm:"size:64;primarykey" json:"id"`
	Name               string         `gorm:"size:255;not null" json:"name"`
	Area               string         `gorm:"size:100;not null;index" json:"area"`
	QualityScore       float64        `gorm:"not null;default:0" json:"quality_score"`
	ReliabilityScore   float64        `gorm:"not null;default:0" json:"reliability_score"`
	SatisfactionRating float64        `gorm:"not null;default:0" json:"satisfaction_rating"`
	AvgDeliveryMinutes float64        `gorm:"not null;default:0" json:"avg_delivery_minutes"`
	PricePerJar        float64        `gorm:"not null;default:0" json:"price_per_jar"`
	EcoCertified       bool           `gorm:"not null;default:false" json:"eco_certified"`
	Certifications     datatypes.JSON `json:"certifications"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// CertificationList decodes Certifications, ignoring malformed values
func (s Supplier) CertificationList() []string {
	var out []string
	if len(s.Certifications) == 0 {
		return out
	}
	if err := json.Unmarshal(s.Certifications, &out); err != nil {
		return nil
	}
	return out
}

// SetCertifications encodes certs into the JSON column
func (s *Supplier) SetCertifications(certs []string) error {
	raw, err := json.Marshal(certs)
	if err != nil {
		return err
	}
	s.Certifications = datatypes.JSON(raw)
	return nil
}

// AreaProductPopularity is a precomputed per-area product aggregate
type AreaProductPopularity struct {
	ID                   uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Area                 string    `gorm:"size:100;not null;uniqueIndex:idx_area_product" json:"area"`
	ProductID            string    `gorm:"size:64;not null;uniqueIndex:idx_area_product" json:"product_id"`
	Name                 string    `gorm:"size:255;not null" json:"name"`
	Brand                string    `gorm:"size:100;not null" json:"brand"`
	PopularityPercentage float64   `gorm:"not null" json:"popularity_percentage"`
	AvgRating            float64   `json:"avg_rating"`
	QualityScore         float64   `json:"quality_score"`
	BestSupplierID       string    `gorm:"size:64" json:"best_supplier_id"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (a *AreaProductPopularity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a AreaProductPopularity) ToEngine() engine.AreaProduct {
	return engine.AreaProduct{
		ID:                   a.ProductID,
		Name:                 a.Name,
		Brand:                a.Brand,
		PopularityPercentage: a.PopularityPercentage,
		AvgRating:            a.AvgRating,
		QualityScore:         a.QualityScore,
		BestSupplierID:       a.BestSupplierID,
	}
}
