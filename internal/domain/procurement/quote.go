package procurement

import (
	"encoding/json"
	"fmt"

	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "DRAFT"
	QuoteStatusSent      QuoteStatus = "SENT"
	QuoteStatusAccepted  QuoteStatus = "ACCEPTED"
	QuoteStatusPurchased QuoteStatus = "PURCHASED"
	QuoteStatusCancelled QuoteStatus = "CANCELLED"
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusPurchased, QuoteStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// Quote is a read-only view of a quote header and its line items
type Quote struct {
	shared.BaseEntity
	ScopeKey string
	Title    string
	Status   QuoteStatus
	Currency valueobject.Currency
	Items    []LineItem
}

// EnsureFinalizable returns an error when the quote cannot be turned into
// ledger entries: a quote without line items is treated as not found and a
// cancelled quote is in the wrong state.
func (q *Quote) EnsureFinalizable() error {
	if len(q.Items) == 0 {
		return shared.ErrNotFound.WithMessage(fmt.Sprintf("quote %s has no line items", q.ID))
	}
	if q.Status == QuoteStatusCancelled {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("quote %s is cancelled", q.ID))
	}
	return nil
}

// ProductIDs returns the distinct product ids referenced by the quote's items
func (q *Quote) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(q.Items))
	ids := make([]uuid.UUID, 0, len(q.Items))
	for _, item := range q.Items {
		if item.ProductID == nil {
			continue
		}
		if _, ok := seen[*item.ProductID]; ok {
			continue
		}
		seen[*item.ProductID] = struct{}{}
		ids = append(ids, *item.ProductID)
	}
	return ids
}

// LineItem is one row of a quote
type LineItem struct {
	ID            uuid.UUID
	QuoteID       uuid.UUID
	ProductID     *uuid.UUID
	Product       *Product
	VendorLabel   string
	BrandLabel    string
	ItemName      string
	CatalogNumber string
	Unit          string
	Quantity      int
	UnitPrice     *decimal.Decimal
	LineTotal     *decimal.Decimal
	Currency      valueobject.Currency
	Notes         string
	Snapshot      *ItemSnapshot
}

// ItemSnapshot holds catalog fields denormalized onto the line item when the
// quote was authored.
type ItemSnapshot struct {
	Name          string    `json:"name,omitempty"`
	CatalogNumber string    `json:"catalog_number,omitempty"`
	Unit          string    `json:"unit,omitempty"`
	Brand         string    `json:"brand,omitempty"`
	Category      *Category `json:"category,omitempty"`
}

// ParseItemSnapshot decodes a stored snapshot; empty input yields nil
func ParseItemSnapshot(raw []byte) (*ItemSnapshot, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s ItemSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode item snapshot: %w", err)
	}
	if s.Category != nil && !s.Category.IsValid() {
		s.Category = nil
	}
	return &s, nil
}

// DisplayName returns the item name, falling back to the snapshot then the product
func (li *LineItem) DisplayName() string {
	return firstNonEmpty(li.ItemName, li.snapshotField(func(s *ItemSnapshot) string { return s.Name }), li.productField(func(p *Product) string { return p.Name }))
}

// ResolvedCatalogNumber returns the catalog number with the same fallback order as DisplayName
func (li *LineItem) ResolvedCatalogNumber() string {
	return firstNonEmpty(li.CatalogNumber, li.snapshotField(func(s *ItemSnapshot) string { return s.CatalogNumber }), li.productField(func(p *Product) string { return p.CatalogNumber }))
}

// ResolvedUnit returns the unit with the same fallback order as DisplayName
func (li *LineItem) ResolvedUnit() string {
	return firstNonEmpty(li.Unit, li.snapshotField(func(s *ItemSnapshot) string { return s.Unit }), li.productField(func(p *Product) string { return p.Unit }))
}

// ResolvedCategory returns the product category, falling back to the snapshot
func (li *LineItem) ResolvedCategory() *Category {
	if li.Product != nil && li.Product.Category != nil && li.Product.Category.IsValid() {
		c := *li.Product.Category
		return &c
	}
	if li.Snapshot != nil && li.Snapshot.Category != nil && li.Snapshot.Category.IsValid() {
		c := *li.Snapshot.Category
		return &c
	}
	return nil
}

func (li *LineItem) snapshotField(get func(*ItemSnapshot) string) string {
	if li.Snapshot == nil {
		return ""
	}
	return get(li.Snapshot)
}

func (li *LineItem) productField(get func(*Product) string) string {
	if li.Product == nil {
		return ""
	}
	return get(li.Product)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
