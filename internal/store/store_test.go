package store

import (
	"context"
	"testing"
	"time"

	"github.com/aquaflow/backend/internal/models"
	"github.com/aquaflow/backend/internal/testhelpers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func placedAt(daysAgo int) *time.Time {
	t := time.Date(2026, time.October, 16, 14, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
	return &t
}

func ptr(v float64) *float64 { return &v }

func TestRecentOrders(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	orders := NewOrderStore(db)
	ctx := context.Background()

	for i, days := range []int{3, 0, 10, 1} {
		o := &models.Order{
			UserID:     "user-1",
			SupplierID: "supplier_1",
			Total:      float64(100 + i),
			PlacedAt:   placedAt(days),
			Items: []models.OrderItem{
				{ProductID: "jar_20l", Name: "20L Jar", Quantity: 2, Price: 50, Brand: "Aqua"},
			},
		}
		require.NoError(t, orders.CreateOrder(ctx, o))
	}
	require.NoError(t, orders.CreateOrder(ctx, &models.Order{UserID: "user-1", Total: 1}))
	require.NoError(t, orders.CreateOrder(ctx, &models.Order{UserID: "user-2", Total: 5, PlacedAt: placedAt(0)}))

	got, err := orders.RecentOrders(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.Equal(t, 101.0, got[0].Total)
	assert.Equal(t, 103.0, got[1].Total)
	assert.Equal(t, 100.0, got[2].Total)
	assert.Equal(t, 102.0, got[3].Total)
	assert.Nil(t, got[4].PlacedAt)
	require.Len(t, got[0].Items, 1)
	assert.Equal(t, "jar_20l", got[0].Items[0].ProductID)

	limited, err := orders.RecentOrders(ctx, "user-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := orders.RecentOrders(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderToEngine(t *testing.T) {
	o := models.Order{
		ID:       uuid.New(),
		UserID:   "user-1",
		PlacedAt: placedAt(0),
		Items:    []models.OrderItem{{ProductID: "jar_20l", Quantity: 2, Price: 50}},
	}
	e := o.ToEngine()
	assert.Equal(t, o.ID.String(), e.ID)
	assert.Equal(t, *o.PlacedAt, e.CreatedAt)
	assert.Len(t, e.Items, 1)

	o.PlacedAt = nil
	assert.True(t, o.ToEngine().CreatedAt.IsZero())
}

func TestProfileStore(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	profiles := NewProfileStore(db)
	ctx := context.Background()

	_, err := profiles.GetProfile(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, profiles.SaveProfile(ctx, &models.UserProfile{UserID: "user-1", Area: "Koramangala"}))
	require.NoError(t, profiles.SaveProfile(ctx, &models.UserProfile{UserID: "user-1", Area: "Indiranagar", EcoMode: true}))

	p, err := profiles.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Indiranagar", p.Area)
	assert.True(t, p.EcoMode)

	var count int64
	require.NoError(t, db.Model(&models.UserProfile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAreaPopularProducts(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	aggregates := NewAggregateStore(db)
	ctx := context.Background()

	rows := []models.AreaProductPopularity{
		{Area: "Koramangala", ProductID: "bisleri_1l", Name: "Bisleri 1L", Brand: "Bisleri", PopularityPercentage: 85},
		{Area: "Koramangala", ProductID: "kinley_20l", Name: "Kinley 20L", Brand: "Kinley", PopularityPercentage: 90},
		{Area: "Whitefield", ProductID: "aqua_20l", Name: "Aqua 20L", Brand: "Aqua", PopularityPercentage: 70},
	}
	for i := range rows {
		require.NoError(t, aggregates.UpsertAreaProduct(ctx, &rows[i]))
	}
	// replacing a row keeps a single entry per area and product
	require.NoError(t, aggregates.UpsertAreaProduct(ctx, &models.AreaProductPopularity{
		Area: "Koramangala", ProductID: "bisleri_1l", Name: "Bisleri 1L", Brand: "Bisleri", PopularityPercentage: 95,
	}))

	got, err := aggregates.AreaPopularProducts(ctx, "Koramangala")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bisleri_1l", got[0].ProductID)
	assert.Equal(t, 95.0, got[0].PopularityPercentage)
	assert.Equal(t, "kinley_20l", got[1].ToEngine().ID)

	unknown, err := aggregates.AreaPopularProducts(ctx, "Unknown")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestSupplierStore(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	suppliers := NewSupplierStore(db)
	ctx := context.Background()

	eco := &models.Supplier{ID: "supplier_eco", Name: "EcoWater", Area: "Koramangala", EcoCertified: true}
	require.NoError(t, eco.SetCertifications([]string{"BIS", "ISO 14001"}))
	require.NoError(t, suppliers.CreateSupplier(ctx, eco))
	require.NoError(t, suppliers.CreateSupplier(ctx, &models.Supplier{ID: "supplier_1", Name: "AquaFresh", Area: "Whitefield"}))

	inArea, err := suppliers.ListSuppliers(ctx, "Koramangala")
	require.NoError(t, err)
	require.Len(t, inArea, 1)
	assert.Equal(t, []string{"BIS", "ISO 14001"}, inArea[0].CertificationList())

	all, err := suppliers.ListSuppliers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = suppliers.GetSupplier(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLabReportStore(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	reports := NewLabReportStore(db)
	ctx := context.Background()

	older := &models.LabReport{
		SupplierID: "supplier_1",
		ReportDate: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		PH:         ptr(7.2), TDS: ptr(180), Chlorine: ptr(0.1), Bacteria: ptr(0),
		Minerals: datatypes.JSONMap{"calcium": 30.0},
	}
	newer := &models.LabReport{
		SupplierID: "supplier_1",
		ReportDate: time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
		PH:         ptr(7.5), TDS: ptr(225), Chlorine: ptr(0), Bacteria: ptr(0),
		Minerals: datatypes.JSONMap{"calcium": 40.0, "magnesium": 15.0},
	}
	require.NoError(t, reports.Create(ctx, older))
	require.NoError(t, reports.Create(ctx, newer))

	latest, err := reports.Latest(ctx, "supplier_1")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)

	report, err := latest.ToEngine()
	require.NoError(t, err)
	assert.Equal(t, 40.0, report.Parameters.Minerals["calcium"])
	assert.Equal(t, 7.5, *report.Parameters.PH)

	list, err := reports.ListBySupplier(ctx, "supplier_1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[1].ID)

	_, err = reports.Latest(ctx, "supplier_2")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, reports.SetDocumentKey(ctx, older.ID, "lab-reports/supplier_1/a.pdf"))
	got, err := reports.Get(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "lab-reports/supplier_1/a.pdf", got.DocumentKey)

	assert.ErrorIs(t, reports.SetDocumentKey(ctx, uuid.New(), "x"), ErrNotFound)
}

func TestLabReportRejectsNonNumericMineral(t *testing.T) {
	r := models.LabReport{Minerals: datatypes.JSONMap{"calcium": "lots"}}
	_, err := r.ToEngine()
	assert.Error(t, err)
}
