package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/aquaflow/backend/config"
	"github.com/aquaflow/backend/internal/database"
	"github.com/aquaflow/backend/internal/models"
	"github.com/aquaflow/backend/internal/service"
	"github.com/aquaflow/backend/internal/store"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const demoArea = "Indiranagar"

func main() {
	userID := flag.String("user", "demo-user", "user id to seed an order history for")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed demo token")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if config.IsProduction() {
		logger.Fatal("refusing to seed a production database")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate", zap.Error(err))
	}

	if err := seed(context.Background(), db, *userID, time.Now().In(cfg.Location())); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seed data created", zap.String("user_id", *userID), zap.String("area", demoArea))

	token, err := service.NewTokenService(cfg.JWTSecret).GenerateToken(*userID, *tokenTTL)
	if err != nil {
		logger.Fatal("failed to issue demo token", zap.Error(err))
	}
	fmt.Printf("Authorization: Bearer %s\n", token)
}

func f(v float64) *float64 { return &v }

func seedSuppliers() ([]models.Supplier, error) {
	suppliers := []struct {
		supplier models.Supplier
		certs    []string
	}{
		{models.Supplier{ID: "supplier_1", Name: "AquaFresh", Area: demoArea, QualityScore: 7.2, ReliabilityScore: 7.5,
			SatisfactionRating: 3.9, AvgDeliveryMinutes: 30, PricePerJar: 45}, []string{"BIS"}},
		{models.Supplier{ID: "supplier_premium", Name: "PureFlow Premium", Area: demoArea, QualityScore: 9.5, ReliabilityScore: 9.2,
			SatisfactionRating: 4.8, AvgDeliveryMinutes: 8, PricePerJar: 60}, []string{"BIS", "ISO 22000", "FSSAI"}},
		{models.Supplier{ID: "supplier_eco", Name: "EcoWater Solutions", Area: demoArea, QualityScore: 8.4, ReliabilityScore: 8.1,
			SatisfactionRating: 4.3, AvgDeliveryMinutes: 20, PricePerJar: 50, EcoCertified: true}, []string{"BIS", "Green Business"}},
		{models.Supplier{ID: "supplier_budget", Name: "ValueWater", Area: "Koramangala", QualityScore: 6.1, ReliabilityScore: 6.8,
			SatisfactionRating: 3.4, AvgDeliveryMinutes: 45, PricePerJar: 35}, nil},
	}

	out := make([]models.Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if s.certs != nil {
			if err := s.supplier.SetCertifications(s.certs); err != nil {
				return nil, err
			}
		}
		out = append(out, s.supplier)
	}
	return out, nil
}

// seed replaces the demo data. It is safe to run repeatedly.
func seed(ctx context.Context, db *gorm.DB, userID string, now time.Time) error {
	suppliers, err := seedSuppliers()
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []interface{}{&models.LabReport{}, &models.AreaProductPopularity{}, &models.Supplier{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
				return fmt.Errorf("failed to clear %T: %w", table, err)
			}
		}
		userOrders := tx.Model(&models.Order{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("order_id IN (?)", userOrders).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear order items: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Order{}).Error; err != nil {
			return fmt.Errorf("failed to clear orders: %w", err)
		}

		supplierStore := store.NewSupplierStore(tx)
		for i := range suppliers {
			if err := supplierStore.CreateSupplier(ctx, &suppliers[i]); err != nil {
				return err
			}
		}

		aggregates := store.NewAggregateStore(tx)
		for _, p := range []models.AreaProductPopularity{
			{Area: demoArea, ProductID: "kinley_20l", Name: "Kinley 20L Jar", Brand: "Kinley",
				PopularityPercentage: 85, AvgRating: 4.6, QualityScore: 9.1, BestSupplierID: "supplier_premium"},
			{Area: demoArea, ProductID: "bisleri_20l", Name: "Bisleri 20L Jar", Brand: "Bisleri",
				PopularityPercentage: 72, AvgRating: 4.4, QualityScore: 8.7, BestSupplierID: "supplier_eco"},
			{Area: demoArea, ProductID: "aqua_20l", Name: "Aqua 20L Jar", Brand: "Aqua",
				PopularityPercentage: 55, AvgRating: 4.0, QualityScore: 7.8, BestSupplierID: "supplier_1"},
		} {
			p := p
			if err := aggregates.UpsertAreaProduct(ctx, &p); err != nil {
				return err
			}
		}

		reports := store.NewLabReportStore(tx)
		for _, r := range []models.LabReport{
			{SupplierID: "supplier_premium", ReportDate: now.AddDate(0, -1, 0), Certification: "BIS",
				PH: f(7.4), TDS: f(210), Chlorine: f(0.1), Bacteria: f(0),
				Minerals: map[string]interface{}{"calcium": 32.0, "magnesium": 14.0, "potassium": 11.0}},
			{SupplierID: "supplier_eco", ReportDate: now.AddDate(0, 0, -20), Certification: "BIS",
				PH: f(7.1), TDS: f(180), Chlorine: f(0.3), Bacteria: f(0),
				Minerals: map[string]interface{}{"calcium": 25.0, "magnesium": 9.0, "potassium": 12.0}},
			{SupplierID: "supplier_1", ReportDate: now.AddDate(0, 0, -45), Certification: "FSSAI",
				PH: f(8.9), TDS: f(340), Chlorine: f(0.6), Bacteria: f(0),
				Minerals: map[string]interface{}{"calcium": 18.0}},
		} {
			r := r
			if err := reports.Create(ctx, &r); err != nil {
				return err
			}
		}

		profiles := store.NewProfileStore(tx)
		if err := profiles.SaveProfile(ctx, &models.UserProfile{UserID: userID, Area: demoArea}); err != nil {
			return err
		}

		orders := store.NewOrderStore(tx)
		for _, placed := range fridayAfternoons(now, 6) {
			placed := placed
			order := &models.Order{
				UserID:     userID,
				SupplierID: "supplier_1",
				Total:      90,
				PlacedAt:   &placed,
				Items: []models.OrderItem{
					{ProductID: "aqua_20l", Name: "Aqua 20L Jar", Quantity: 2, Price: 45, Brand: "Aqua", Size: "20L"},
				},
			}
			if err := orders.CreateOrder(ctx, order); err != nil {
				return err
			}
		}
		return nil
	})
}

// fridayAfternoons returns the n most recent Fridays before now at 14:30
func fridayAfternoons(now time.Time, n int) []time.Time {
	daysBack := (int(now.Weekday()) - int(time.Friday) + 7) % 7
	if daysBack == 0 {
		daysBack = 7
	}
	last := time.Date(now.Year(), now.Month(), now.Day()-daysBack, 14, 30, 0, 0, now.Location())

	out := make([]time.Time, n)
	for i := range out {
		out[i] = last.AddDate(0, 0, -7*i)
	}
	return out
}
