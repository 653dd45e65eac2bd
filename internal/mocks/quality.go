package mocks

import (
	"context"
	"io"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/aquaflow/backend/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockQualityService is a mock implementation of the IQualityService interface
type MockQualityService struct {
	mock.Mock
}

func (m *MockQualityService) Analyze(report engine.LabReport) (engine.Analysis, error) {
	args := m.Called(report)
	return args.Get(0).(engine.Analysis), args.Error(1)
}

func (m *MockQualityService) SupplierQuality(ctx context.Context, supplierID string) (*types.SupplierQualityResponse, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SupplierQualityResponse), args.Error(1)
}

func (m *MockQualityService) CreateReport(ctx context.Context, report engine.LabReport) (*types.LabReportResponse, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LabReportResponse), args.Error(1)
}

// AttachDocument reads body so expectations can match on the uploaded content
func (m *MockQualityService) AttachDocument(ctx context.Context, supplierID string, reportID uuid.UUID, filename, contentType string, body io.Reader, size int64) (*types.DocumentResponse, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	args := m.Called(ctx, supplierID, reportID, filename, contentType, string(data), size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.DocumentResponse), args.Error(1)
}

// ExportReports writes the configured payload (args[0], a string) to w
func (m *MockQualityService) ExportReports(ctx context.Context, supplierID string, w io.Writer) error {
	args := m.Called(ctx, supplierID)
	if payload, ok := args.Get(0).(string); ok && payload != "" {
		if _, err := io.WriteString(w, payload); err != nil {
			return err
		}
	}
	return args.Error(1)
}
