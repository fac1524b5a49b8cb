package models

import (
	"time"

	"github.com/bioinsight/backend/internal/domain/procurement"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for catalog products
type ProductModel struct {
	BaseModel
	Name          string  `gorm:"type:varchar(200);not null"`
	CatalogNumber string  `gorm:"type:varchar(100)"`
	Brand         string  `gorm:"type:varchar(100)"`
	Unit          string  `gorm:"type:varchar(20)"`
	Category      *string `gorm:"type:varchar(30)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *procurement.Product {
	p := &procurement.Product{
		ID:            m.ID,
		Name:          m.Name,
		CatalogNumber: m.CatalogNumber,
		Brand:         m.Brand,
		Unit:          m.Unit,
	}
	if m.Category != nil {
		// unknown stored values degrade to uncategorized
		if c, err := procurement.ParseCategory(*m.Category); err == nil {
			p.Category = c
		}
	}
	return p
}

// QuoteModel is the persistence model for quote headers
type QuoteModel struct {
	BaseModel
	ScopeKey string               `gorm:"type:varchar(150);not null;index"`
	Title    string               `gorm:"type:varchar(200)"`
	Status   string               `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Currency string               `gorm:"type:varchar(3)"`
	Items    []QuoteLineItemModel `gorm:"foreignKey:QuoteID;references:ID"`
}

// TableName returns the table name for GORM
func (QuoteModel) TableName() string {
	return "quotes"
}

// ToDomain converts the persistence model to a domain Quote
func (m *QuoteModel) ToDomain() *procurement.Quote {
	q := &procurement.Quote{
		BaseEntity: m.BaseModel.ToDomain(),
		ScopeKey:   m.ScopeKey,
		Title:      m.Title,
		Status:     procurement.QuoteStatus(m.Status),
		Currency:   valueobject.Currency(m.Currency),
		Items:      make([]procurement.LineItem, 0, len(m.Items)),
	}
	for i := range m.Items {
		q.Items = append(q.Items, m.Items[i].ToDomain())
	}
	return q
}

// QuoteLineItemModel is the persistence model for quote line items
type QuoteLineItemModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key"`
	QuoteID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	ProductID     *uuid.UUID          `gorm:"type:uuid;index"`
	Product       *ProductModel       `gorm:"foreignKey:ProductID;references:ID"`
	VendorLabel   string              `gorm:"type:varchar(200)"`
	BrandLabel    string              `gorm:"type:varchar(100)"`
	ItemName      string              `gorm:"type:varchar(300)"`
	CatalogNumber string              `gorm:"type:varchar(100)"`
	Unit          string              `gorm:"type:varchar(20)"`
	Quantity      int                 `gorm:"not null"`
	UnitPrice     decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	LineTotal     decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Currency      *string             `gorm:"type:varchar(3)"`
	Notes         string              `gorm:"type:text"`
	Snapshot      *string             `gorm:"type:jsonb"`
	SortOrder     int                 `gorm:"not null;default:0"`
	CreatedAt     time.Time           `gorm:"not null"`
	UpdatedAt     time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (QuoteLineItemModel) TableName() string {
	return "quote_line_items"
}

// ToDomain converts the persistence model to a domain LineItem.
// A malformed snapshot is dropped rather than failing the read.
func (m *QuoteLineItemModel) ToDomain() procurement.LineItem {
	li := procurement.LineItem{
		ID:            m.ID,
		QuoteID:       m.QuoteID,
		ProductID:     uuidPtr(m.ProductID),
		VendorLabel:   m.VendorLabel,
		BrandLabel:    m.BrandLabel,
		ItemName:      m.ItemName,
		CatalogNumber: m.CatalogNumber,
		Unit:          m.Unit,
		Quantity:      m.Quantity,
		UnitPrice:     nullDecimalPtr(m.UnitPrice),
		LineTotal:     nullDecimalPtr(m.LineTotal),
		Notes:         m.Notes,
	}
	if m.Currency != nil {
		li.Currency = valueobject.Currency(*m.Currency)
	}
	if m.Product != nil {
		li.Product = m.Product.ToDomain()
	}
	if m.Snapshot != nil {
		if snap, err := procurement.ParseItemSnapshot([]byte(*m.Snapshot)); err == nil {
			li.Snapshot = snap
		}
	}
	return li
}

// VendorOfferModel is the persistence model for vendor reference prices
type VendorOfferModel struct {
	BaseModel
	ProductID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	VendorName string              `gorm:"type:varchar(200);not null"`
	Price      decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Currency   string              `gorm:"type:varchar(3)"`
}

// TableName returns the table name for GORM
func (VendorOfferModel) TableName() string {
	return "vendor_offers"
}

// ToDomain converts the persistence model to a domain VendorOffer
func (m *VendorOfferModel) ToDomain() procurement.VendorOffer {
	return procurement.VendorOffer{
		ID:         m.ID,
		ProductID:  m.ProductID,
		VendorName: m.VendorName,
		Price:      nullDecimalPtr(m.Price),
		Currency:   valueobject.Currency(m.Currency),
		UpdatedAt:  m.UpdatedAt,
	}
}
