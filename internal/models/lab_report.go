package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LabReport is a stored water-quality lab report. Its score is always
// derived on read and never persisted.
type LabReport struct {
	ID            uuid.UUID         `gorm:"type:varchar(36);primarykey" json:"id"`
	SupplierID    string            `gorm:"size:64;not null;index:idx_lab_reports_supplier_date,priority:1" json:"supplier_id"`
	ReportDate    time.Time         `gorm:"not null;index:idx_lab_reports_supplier_date,priority:2,sort:desc" json:"report_date"`
	Certification string            `gorm:"size:100" json:"certification"`
	PH            *float64          `gorm:"column:ph" json:"ph"`
	TDS           *float64          `gorm:"column:tds" json:"tds"`
	Chlorine      *float64          `json:"chlorine"`
	Bacteria      *float64          `json:"bacteria"`
	Minerals      datatypes.JSONMap `json:"minerals"`
	DocumentKey   string            `gorm:"size:512" json:"document_key,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (r *LabReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ToEngine converts the row for scoring. Mineral values that are not
// numbers are reported as a validation error.
func (r LabReport) ToEngine() (engine.LabReport, error) {
	minerals := make(map[string]float64, len(r.Minerals))
	for name, raw := range r.Minerals {
		v, ok := toFloat(raw)
		if !ok {
			return engine.LabReport{}, &engine.ValidationError{
				Field:   "parameters.minerals." + name,
				Message: fmt.Sprintf("must be a number, got %T", raw),
			}
		}
		minerals[name] = v
	}
	return engine.LabReport{
		ID:            r.ID.String(),
		SupplierID:    r.SupplierID,
		Date:          r.ReportDate,
		Certification: r.Certification,
		Parameters: engine.LabParameters{
			PH:       r.PH,
			TDS:      r.TDS,
			Chlorine: r.Chlorine,
			Bacteria: r.Bacteria,
			Minerals: minerals,
		},
	}, nil
}

// LabReportFromEngine builds a row from an engine report. The ID is left
// for BeforeCreate unless report.ID parses as a UUID.
func LabReportFromEngine(report engine.LabReport) LabReport {
	row := LabReport{
		SupplierID:    report.SupplierID,
		ReportDate:    report.Date,
		Certification: report.Certification,
		PH:            report.Parameters.PH,
		TDS:           report.Parameters.TDS,
		Chlorine:      report.Parameters.Chlorine,
		Bacteria:      report.Parameters.Bacteria,
		Minerals:      datatypes.JSONMap{},
	}
	if id, err := uuid.Parse(report.ID); err == nil {
		row.ID = id
	}
	for name, v := range report.Parameters.Minerals {
		row.Minerals[name] = v
	}
	return row
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
