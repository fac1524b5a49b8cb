package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bioinsight/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testScopeKey = "organization:org-1"

// newSQLiteDB opens a migrated file-backed sqlite database. A single
// connection serializes transactions the way a serializable postgres would
// for these small fixtures.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ledger.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func strPtr(s string) *string {
	return &s
}

type seededQuote struct {
	QuoteID   uuid.UUID
	ProductID uuid.UUID
	ItemIDs   []uuid.UUID
}

// seedQuote stores a quote with one explicitly priced item and one item that
// is priced from the product's vendor offers.
func seedQuote(t *testing.T, db *gorm.DB, scopeKey, status string) seededQuote {
	t.Helper()
	now := time.Now().UTC()

	product := models.ProductModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:      "Taq polymerase",
		Unit:      "EA",
		Category:  strPtr("REAGENT"),
	}
	require.NoError(t, db.Create(&product).Error)

	offers := []models.VendorOfferModel{
		{
			BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			ProductID:  product.ID,
			VendorName: "BioSupply",
			Price:      decimal.NewNullDecimal(decimal.RequireFromString("1999.5")),
			Currency:   "KRW",
		},
		{
			BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			ProductID:  product.ID,
			VendorName: "LabMart",
			Price:      decimal.NewNullDecimal(decimal.NewFromInt(2500)),
			Currency:   "KRW",
		},
	}
	require.NoError(t, db.Create(&offers).Error)

	quote := models.QuoteModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ScopeKey:  scopeKey,
		Title:     "Q1 reagents",
		Status:    status,
		Currency:  "KRW",
	}
	require.NoError(t, db.Create(&quote).Error)

	productID := product.ID
	items := []models.QuoteLineItemModel{
		{
			ID:        uuid.New(),
			QuoteID:   quote.ID,
			ItemName:  "Pipette tips",
			Quantity:  2,
			UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(1500)),
			SortOrder: 0,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        uuid.New(),
			QuoteID:   quote.ID,
			ProductID: &productID,
			Quantity:  3,
			Snapshot:  strPtr(`{"name":"Taq (snapshot)","unit":"TUBE"}`),
			SortOrder: 1,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	require.NoError(t, db.Create(&items).Error)

	return seededQuote{
		QuoteID:   quote.ID,
		ProductID: product.ID,
		ItemIDs:   []uuid.UUID{items[0].ID, items[1].ID},
	}
}
