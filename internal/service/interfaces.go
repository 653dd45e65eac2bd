package service

import (
	"context"
	"io"
	"time"

	"github.com/aquaflow/backend/internal/engine"
	"github.com/aquaflow/backend/internal/models"
	"github.com/aquaflow/backend/internal/types"
	"github.com/google/uuid"
)

// OrderReader reads order history
type OrderReader interface {
	RecentOrders(ctx context.Context, userID string, limit int) ([]models.Order, error)
}

// ProfileReader reads stored user profiles. It returns store.ErrNotFound
// for users without a profile.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// AreaProductReader serves per-area product popularity
type AreaProductReader interface {
	AreaPopularProducts(ctx context.Context, area string) ([]models.AreaProductPopularity, error)
}

// SupplierReader reads suppliers and their analytics
type SupplierReader interface {
	ListSuppliers(ctx context.Context, area string) ([]models.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*models.Supplier, error)
}

// LabReportRepository persists lab reports
type LabReportRepository interface {
	Create(ctx context.Context, report *models.LabReport) error
	Get(ctx context.Context, id uuid.UUID) (*models.LabReport, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]models.LabReport, error)
	Latest(ctx context.Context, supplierID string) (*models.LabReport, error)
	SetDocumentKey(ctx context.Context, id uuid.UUID, key string) error
}

// DismissalStore remembers which recommendations a session dismissed
type DismissalStore interface {
	Dismiss(ctx context.Context, sessionID, recommendationID string) error
	Dismissed(ctx context.Context, sessionID string) (map[string]bool, error)
}

// ObjectStore archives lab report documents
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// IRecommendationService defines the recommendation operations exposed over HTTP
type IRecommendationService interface {
	Snapshot(ctx context.Context, userID string) (engine.Snapshot, error)
	Preferences(ctx context.Context, userID string) (engine.UserPreferences, error)
	Patterns(ctx context.Context, userID string) ([]engine.OrderPattern, error)
	Recommendations(ctx context.Context, userID, sessionID string) ([]engine.Recommendation, error)
	Dismiss(ctx context.Context, sessionID, recommendationID string) error
}

// IQualityService defines the lab report operations exposed over HTTP
type IQualityService interface {
	Analyze(report engine.LabReport) (engine.Analysis, error)
	SupplierQuality(ctx context.Context, supplierID string) (*types.SupplierQualityResponse, error)
	CreateReport(ctx context.Context, report engine.LabReport) (*types.LabReportResponse, error)
	AttachDocument(ctx context.Context, supplierID string, reportID uuid.UUID, filename, contentType string, body io.Reader, size int64) (*types.DocumentResponse, error)
	ExportReports(ctx context.Context, supplierID string, w io.Writer) error
}

// ITokenService issues and validates access tokens
type ITokenService interface {
	GenerateToken(userID string, ttl time.Duration) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}
