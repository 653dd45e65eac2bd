// Package store reads and writes the relational data behind recommendations
// and lab reports through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aquaflow/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// OrderStore reads a user's order history
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// RecentOrders returns up to limit orders of userID, newest first, with items.
// Orders without a placement time come last.
func (s *OrderStore) RecentOrders(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("CASE WHEN placed_at IS NULL THEN 1 ELSE 0 END").
		Order("placed_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// CreateOrder stores an order together with its items
func (s *OrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// ProfileStore reads user profiles
type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// GetProfile returns ErrNotFound when the user has no stored profile
func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// SaveProfile inserts or updates the profile keyed by UserID
func (s *ProfileStore) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	var existing models.UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", profile.UserID).First(&existing).Error
	switch {
	case err == nil:
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		err = s.db.WithContext(ctx).Save(profile).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = s.db.WithContext(ctx).Create(profile).Error
	}
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// AggregateStore serves precomputed area aggregates
type AggregateStore struct {
	db *gorm.DB
}

func NewAggregateStore(db *gorm.DB) *AggregateStore {
	return &AggregateStore{db: db}
}

// AreaPopularProducts returns the area's rows, most popular first
func (s *AggregateStore) AreaPopularProducts(ctx context.Context, area string) ([]models.AreaProductPopularity, error) {
	var rows []models.AreaProductPopularity
	err := s.db.WithContext(ctx).
		Where("area = ?", area).
		Order("popularity_percentage DESC").
		Order("product_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load popular products for area %s: %w", area, err)
	}
	return rows, nil
}

// UpsertAreaProduct replaces the row for (Area, ProductID)
func (s *AggregateStore) UpsertAreaProduct(ctx context.Context, row *models.AreaProductPopularity) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("area = ? AND product_id = ?", row.Area, row.ProductID).
			Delete(&models.AreaProductPopularity{}).Error; err != nil {
			return err
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return fmt.Errorf("failed to upsert area product %s: %w", row.ProductID, err)
	}
	return nil
}

// SupplierStore reads suppliers and their analytics
type SupplierStore struct {
	db *gorm.DB
}

func NewSupplierStore(db *gorm.DB) *SupplierStore {
	return &SupplierStore{db: db}
}

// ListSuppliers returns suppliers serving area, or all suppliers when area is empty
func (s *SupplierStore) ListSuppliers(ctx context.Context, area string) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	q := s.db.WithContext(ctx).Order("id")
	if area != "" {
		q = q.Where("area = ?", area)
	}
	if err := q.Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *SupplierStore) GetSupplier(ctx context.Context, id string) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&supplier).Error; err != nil {
		return nil, notFound(err)
	}
	return &supplier, nil
}

func (s *SupplierStore) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	if err := s.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return fmt.Errorf("failed to create supplier %s: %w", supplier.ID, err)
	}
	return nil
}

// LabReportStore persists lab reports
type LabReportStore struct {
	db *gorm.DB
}

func NewLabReportStore(db *gorm.DB) *LabReportStore {
	return &LabReportStore{db: db}
}

func (s *LabReportStore) Create(ctx context.Context, report *models.LabReport) error {
	if report.ReportDate.IsZero() {
		report.ReportDate = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create lab report: %w", err)
	}
	return nil
}

func (s *LabReportStore) Get(ctx context.Context, id uuid.UUID) (*models.LabReport, error) {
	var report models.LabReport
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, notFound(err)
	}
	return &report, nil
}

// ListBySupplier returns a supplier's reports, newest first
func (s *LabReportStore) ListBySupplier(ctx context.Context, supplierID string) ([]models.LabReport, error) {
	var reports []models.LabReport
	err := s.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("report_date DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lab reports for supplier %s: %w", supplierID, err)
	}
	return reports, nil
}

// Latest returns ErrNotFound when the supplier has no reports
func (s *LabReportStore) Latest(ctx context.Context, supplierID string) (*models.LabReport, error) {
	var report models.LabReport
	err := s.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("report_date DESC").
		First(&report).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &report, nil
}

// SetDocumentKey records where the report's certificate was archived
func (s *LabReportStore) SetDocumentKey(ctx context.Context, id uuid.UUID, key string) error {
	res := s.db.WithContext(ctx).Model(&models.LabReport{}).Where("id = ?", id).Update("document_key", key)
	if res.Error != nil {
		return fmt.Errorf("failed to set document key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
