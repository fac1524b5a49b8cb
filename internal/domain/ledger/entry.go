package ledger

import (
	"time"

	"github.com/bioinsight/backend/internal/domain/procurement"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Provenance tags where a ledger entry came from
type Provenance string

const (
	ProvenanceQuote  Provenance = "QUOTE"
	ProvenanceImport Provenance = "IMPORT"
)

// IsValid checks if the provenance is known
func (p Provenance) IsValid() bool {
	return p == ProvenanceQuote || p == ProvenanceImport
}

// UncategorizedLabel is the report label for entries without a category
const UncategorizedLabel = "Uncategorized"

// Entry is an immutable, finalized purchase record. Entries are only ever
// created; nothing in the ledger updates or deletes them.
type Entry struct {
	ID               uuid.UUID
	ScopeKey         string
	QuoteID          *uuid.UUID
	SourceLineItemID *uuid.UUID
	VendorName       string
	Category         *procurement.Category
	ItemName         string
	CatalogNumber    string
	Unit             string
	Quantity         int
	UnitPrice        *decimal.Decimal
	Amount           decimal.Decimal
	Currency         valueobject.Currency
	PurchasedAt      time.Time
	Provenance       Provenance
	ProductID        *uuid.UUID
	CreatedAt        time.Time
}

// CategoryLabel returns the category used for grouping
func (e *Entry) CategoryLabel() string {
	if e.Category == nil || !e.Category.IsValid() {
		return UncategorizedLabel
	}
	return e.Category.String()
}

// BuildQuoteEntries derives one entry per line item of the quote.
// offers maps a product id to the best vendor offer for it; the ledger
// currency of each row is the line item currency, then the quote currency,
// then defaultCurrency.
func BuildQuoteEntries(scope Scope, quote *procurement.Quote, offers map[uuid.UUID]*procurement.VendorOffer, defaultCurrency valueobject.Currency, purchasedAt time.Time) []*Entry {
	quoteID := quote.ID
	entries := make([]*Entry, 0, len(quote.Items))
	for i := range quote.Items {
		item := &quote.Items[i]

		var offer *procurement.VendorOffer
		if item.ProductID != nil {
			offer = offers[*item.ProductID]
		}

		cur := item.Currency.OrDefault(quote.Currency.OrDefault(defaultCurrency))
		res := Resolve(item, offer, cur)
		lineItemID := item.ID

		entry := &Entry{
			ID:               uuid.New(),
			ScopeKey:         scope.String(),
			QuoteID:          &quoteID,
			SourceLineItemID: &lineItemID,
			VendorName:       res.VendorName,
			Category:         item.ResolvedCategory(),
			ItemName:         item.DisplayName(),
			CatalogNumber:    item.ResolvedCatalogNumber(),
			Unit:             item.ResolvedUnit(),
			Quantity:         item.Quantity,
			UnitPrice:        res.UnitPrice,
			Amount:           res.Amount,
			Currency:         cur,
			PurchasedAt:      purchasedAt.UTC(),
			Provenance:       ProvenanceQuote,
			CreatedAt:        purchasedAt.UTC(),
		}
		if item.ProductID != nil {
			pid := *item.ProductID
			entry.ProductID = &pid
		}
		entries = append(entries, entry)
	}
	return entries
}
