package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Lab Reports"

var exportHeader = []interface{}{
	"Report ID", "Date", "Certification", "pH", "TDS (ppm)", "Chlorine (ppm)",
	"Bacteria (CFU/ml)", "Minerals", "Score", "Grade", "Insights",
}

// ExportReports writes the supplier's lab report history as an xlsx
// workbook, newest first. Reports that fail validation are still listed
// with an empty score.
func (s *QualityService) ExportReports(ctx context.Context, supplierID string, w io.Writer) error {
	if _, err := s.suppliers.GetSupplier(ctx, supplierID); err != nil {
		return err
	}
	rows, err := s.reports.ListBySupplier(ctx, supplierID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cells := []interface{}{row.ID.String(), row.ReportDate.Format("2006-01-02"), row.Certification,
			optional(row.PH), optional(row.TDS), optional(row.Chlorine), optional(row.Bacteria)}

		minerals, score, grade, insights := "", interface{}(""), "", ""
		if report, err := row.ToEngine(); err == nil {
			minerals = mineralSummary(report.Parameters.Minerals)
			if analysis, err := engine.Analyze(report); err == nil {
				score, grade, insights = analysis.Score, analysis.Grade, strings.Join(analysis.Insights, "\n")
			} else {
				s.logger.Debug("exporting unscored lab report", zap.String("report_id", row.ID.String()), zap.Error(err))
			}
		}
		cells = append(cells, minerals, score, grade, insights)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func optional(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func mineralSummary(minerals map[string]float64) string {
	names := make([]string, 0, len(minerals))
	for name := range minerals {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, minerals[name]))
	}
	return strings.Join(parts, ", ")
}
