package types

import (
	"time"

	"github.com/aquaflow/backend/internal/engine"
)

// LabReportRequest is the body accepted by the analyze and create endpoints.
// Parameters are pointers so that a missing value can be told apart from zero.
type LabReportRequest struct {
	Date          *time.Time         `json:"date"`
	Certification string             `json:"certification"`
	Parameters    LabParametersInput `json:"parameters" binding:"required"`
}

type LabParametersInput struct {
	PH       *float64           `json:"ph"`
	TDS      *float64           `json:"tds"`
	Chlorine *float64           `json:"chlorine"`
	Bacteria *float64           `json:"bacteria"`
	Minerals map[string]float64 `json:"minerals"`
}

// ToEngine converts the request for the given supplier
func (r LabReportRequest) ToEngine(supplierID string) engine.LabReport {
	report := engine.LabReport{
		SupplierID:    supplierID,
		Certification: r.Certification,
		Parameters: engine.LabParameters{
			PH:       r.Parameters.PH,
			TDS:      r.Parameters.TDS,
			Chlorine: r.Parameters.Chlorine,
			Bacteria: r.Parameters.Bacteria,
			Minerals: r.Parameters.Minerals,
		},
	}
	if r.Date != nil {
		report.Date = r.Date.UTC()
	}
	return report
}

// LabReportResponse is a stored report together with its derived analysis
type LabReportResponse struct {
	ID            string               `json:"id"`
	SupplierID    string               `json:"supplier_id"`
	Date          time.Time            `json:"date"`
	Certification string               `json:"certification"`
	Parameters    engine.LabParameters `json:"parameters"`
	DocumentKey   string               `json:"document_key,omitempty"`
	Analysis      engine.Analysis      `json:"analysis"`
}

// SupplierQualityResponse is the data behind a supplier quality card
type SupplierQualityResponse struct {
	SupplierID         string             `json:"supplier_id"`
	Name               string             `json:"name"`
	Certifications     []string           `json:"certifications"`
	EcoCertified       bool               `json:"eco_certified"`
	AvgDeliveryMinutes float64            `json:"avg_delivery_minutes"`
	ReliabilityScore   float64            `json:"reliability_score"`
	SatisfactionRating float64            `json:"satisfaction_rating"`
	LatestReport       *LabReportResponse `json:"latest_report"`
}

// RecommendationsResponse wraps the ranked list with when it was computed
type RecommendationsResponse struct {
	UserID          string                  `json:"user_id"`
	GeneratedAt     time.Time               `json:"generated_at"`
	Recommendations []engine.Recommendation `json:"recommendations"`
}

// DocumentResponse describes an archived lab report certificate
type DocumentResponse struct {
	ReportID    string `json:"report_id"`
	DocumentKey string `json:"document_key"`
	DownloadURL string `json:"download_url,omitempty"`
}
