package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/aquaflow/backend/internal/models"
	"github.com/aquaflow/backend/internal/store"
	"github.com/aquaflow/backend/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrArchiveDisabled is returned when no object store is configured
	ErrArchiveDisabled = errors.New("document archive is not configured")
	// ErrReportMismatch is returned when a report does not belong to the supplier in the path
	ErrReportMismatch = errors.New("lab report does not belong to supplier")
)

const documentURLExpiry = 15 * time.Minute

// QualityService scores lab reports and manages their storage
type QualityService struct {
	reports   LabReportRepository
	suppliers SupplierReader
	archive   ObjectStore
	now       func() time.Time
	logger    *zap.Logger
}

var _ IQualityService = (*QualityService)(nil)

// NewQualityService creates the service. archive may be nil to disable
// document uploads.
func NewQualityService(reports LabReportRepository, suppliers SupplierReader, archive ObjectStore, logger *zap.Logger) *QualityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QualityService{
		reports:   reports,
		suppliers: suppliers,
		archive:   archive,
		now:       time.Now,
		logger:    logger,
	}
}

// Analyze scores a report without storing it
func (s *QualityService) Analyze(report engine.LabReport) (engine.Analysis, error) {
	return engine.Analyze(report)
}

// SupplierQuality returns the supplier's service metrics with its latest
// analyzed lab report. LatestReport is nil when none were filed.
func (s *QualityService) SupplierQuality(ctx context.Context, supplierID string) (*types.SupplierQualityResponse, error) {
	supplier, err := s.suppliers.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	resp := &types.SupplierQualityResponse{
		SupplierID:         supplier.ID,
		Name:               supplier.Name,
		Certifications:     supplier.CertificationList(),
		EcoCertified:       supplier.EcoCertified,
		AvgDeliveryMinutes: supplier.AvgDeliveryMinutes,
		ReliabilityScore:   supplier.ReliabilityScore,
		SatisfactionRating: supplier.SatisfactionRating,
	}
	if resp.Certifications == nil {
		resp.Certifications = []string{}
	}

	latest, err := s.reports.Latest(ctx, supplierID)
	if errors.Is(err, store.ErrNotFound) {
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest lab report: %w", err)
	}

	resp.LatestReport, err = reportResponse(*latest)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateReport validates and stores a report for an existing supplier
func (s *QualityService) CreateReport(ctx context.Context, report engine.LabReport) (*types.LabReportResponse, error) {
	if _, err := s.suppliers.GetSupplier(ctx, report.SupplierID); err != nil {
		return nil, err
	}
	if err := report.Parameters.Validate(); err != nil {
		return nil, err
	}
	if report.Date.IsZero() {
		report.Date = s.now().UTC()
	}

	row := models.LabReportFromEngine(report)
	if err := s.reports.Create(ctx, &row); err != nil {
		return nil, err
	}
	s.logger.Info("lab report filed",
		zap.String("supplier_id", row.SupplierID),
		zap.String("report_id", row.ID.String()),
	)
	return reportResponse(row)
}

// AttachDocument archives the report's certificate and records its key
func (s *QualityService) AttachDocument(ctx context.Context, supplierID string, reportID uuid.UUID, filename, contentType string, body io.Reader, size int64) (*types.DocumentResponse, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.SupplierID != supplierID {
		return nil, ErrReportMismatch
	}

	key := documentKey(supplierID, reportID, filename)
	if err := s.archive.Put(ctx, key, contentType, body, size); err != nil {
		return nil, fmt.Errorf("failed to archive lab report document: %w", err)
	}
	if err := s.reports.SetDocumentKey(ctx, reportID, key); err != nil {
		return nil, err
	}

	resp := &types.DocumentResponse{ReportID: reportID.String(), DocumentKey: key}
	url, err := s.archive.PresignedURL(ctx, key, documentURLExpiry)
	if err != nil {
		s.logger.Warn("failed to presign lab report document", zap.String("key", key), zap.Error(err))
	} else {
		resp.DownloadURL = url
	}
	return resp, nil
}

func documentKey(supplierID string, reportID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("lab-reports/%s/%s%s", supplierID, reportID, ext)
}

func reportResponse(row models.LabReport) (*types.LabReportResponse, error) {
	report, err := row.ToEngine()
	if err != nil {
		return nil, err
	}
	analysis, err := engine.Analyze(report)
	if err != nil {
		return nil, err
	}
	return &types.LabReportResponse{
		ID:            report.ID,
		SupplierID:    report.SupplierID,
		Date:          report.Date,
		Certification: report.Certification,
		Parameters:    report.Parameters,
		DocumentKey:   row.DocumentKey,
		Analysis:      analysis,
	}, nil
}
