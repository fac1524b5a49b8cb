package models

import (
	"time"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/procurement"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryModel is the persistence model for purchase ledger entries.
// The (quote_id, source_line_item_id) unique index lets duplicate inserts be skipped.
type LedgerEntryModel struct {
	ID               uuid.UUID           `gorm:"type:uuid;primary_key"`
	ScopeKey         string              `gorm:"type:varchar(150);not null;index:idx_ledger_scope_purchased,priority:1"`
	QuoteID          *uuid.UUID          `gorm:"type:uuid;uniqueIndex:idx_ledger_quote_line,priority:1"`
	SourceLineItemID *uuid.UUID          `gorm:"type:uuid;uniqueIndex:idx_ledger_quote_line,priority:2"`
	VendorName       string              `gorm:"type:varchar(200);not null"`
	Category         *string             `gorm:"type:varchar(30)"`
	ItemName         string              `gorm:"type:varchar(300);not null"`
	CatalogNumber    string              `gorm:"type:varchar(100)"`
	Unit             string              `gorm:"type:varchar(20)"`
	Quantity         int                 `gorm:"not null"`
	UnitPrice        decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Amount           decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Currency         string              `gorm:"type:varchar(3);not null"`
	PurchasedAt      time.Time           `gorm:"not null;index:idx_ledger_scope_purchased,priority:2"`
	Provenance       string              `gorm:"type:varchar(10);not null"`
	ProductID        *uuid.UUID          `gorm:"type:uuid;index"`
	CreatedAt        time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "purchase_ledger_entries"
}

// ToDomain converts the persistence model to a domain ledger Entry
func (m *LedgerEntryModel) ToDomain() *ledger.Entry {
	e := &ledger.Entry{
		ID:               m.ID,
		ScopeKey:         m.ScopeKey,
		QuoteID:          uuidPtr(m.QuoteID),
		SourceLineItemID: uuidPtr(m.SourceLineItemID),
		VendorName:       m.VendorName,
		ItemName:         m.ItemName,
		CatalogNumber:    m.CatalogNumber,
		Unit:             m.Unit,
		Quantity:         m.Quantity,
		UnitPrice:        nullDecimalPtr(m.UnitPrice),
		Amount:           m.Amount,
		Currency:         valueobject.Currency(m.Currency),
		PurchasedAt:      m.PurchasedAt.UTC(),
		Provenance:       ledger.Provenance(m.Provenance),
		ProductID:        uuidPtr(m.ProductID),
		CreatedAt:        m.CreatedAt,
	}
	if m.Category != nil {
		if c, err := procurement.ParseCategory(*m.Category); err == nil {
			e.Category = c
		}
	}
	return e
}

// LedgerEntryModelFromDomain creates a persistence model from a domain ledger Entry
func LedgerEntryModelFromDomain(e *ledger.Entry) *LedgerEntryModel {
	m := &LedgerEntryModel{
		ID:               e.ID,
		ScopeKey:         e.ScopeKey,
		QuoteID:          uuidPtr(e.QuoteID),
		SourceLineItemID: uuidPtr(e.SourceLineItemID),
		VendorName:       e.VendorName,
		ItemName:         e.ItemName,
		CatalogNumber:    e.CatalogNumber,
		Unit:             e.Unit,
		Quantity:         e.Quantity,
		UnitPrice:        toNullDecimal(e.UnitPrice),
		Amount:           e.Amount,
		Currency:         e.Currency.String(),
		PurchasedAt:      e.PurchasedAt.UTC(),
		Provenance:       string(e.Provenance),
		ProductID:        uuidPtr(e.ProductID),
		CreatedAt:        e.CreatedAt,
	}
	if e.Category != nil {
		c := e.Category.String()
		m.Category = &c
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return m
}
