package ledger

import (
	"time"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SummaryResponse is the spend report returned to reporting callers
type SummaryResponse struct {
	ScopeKey      string          `json:"scope_key"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Currency      string          `json:"currency"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalDisplay  string          `json:"total_display"`
	EntryCount    int             `json:"entry_count"`
	ByMonth       []MonthResponse `json:"by_month"`
	TopVendors    []GroupResponse `json:"top_vendors"`
	TopCategories []GroupResponse `json:"top_categories"`
}

// MonthResponse is one monthly bucket
type MonthResponse struct {
	Month   string          `json:"month"`
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
	Count   int             `json:"count"`
}

// GroupResponse is one vendor or category total
type GroupResponse struct {
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
	Count   int             `json:"count"`
}

// EntryResponse is one ledger row
type EntryResponse struct {
	ID               string           `json:"id"`
	QuoteID          *string          `json:"quote_id,omitempty"`
	SourceLineItemID *string          `json:"source_line_item_id,omitempty"`
	VendorName       string           `json:"vendor_name"`
	Category         string           `json:"category"`
	ItemName         string           `json:"item_name"`
	CatalogNumber    string           `json:"catalog_number,omitempty"`
	Unit             string           `json:"unit,omitempty"`
	Quantity         int              `json:"quantity"`
	UnitPrice        *decimal.Decimal `json:"unit_price,omitempty"`
	Amount           decimal.Decimal  `json:"amount"`
	AmountDisplay    string           `json:"amount_display"`
	Currency         string           `json:"currency"`
	PurchasedAt      time.Time        `json:"purchased_at"`
	Provenance       string           `json:"provenance"`
}

// ToSummaryResponse converts a domain Summary, formatting every amount in its currency
func ToSummaryResponse(s *ledger.Summary) *SummaryResponse {
	cur := s.Currency.OrDefault(valueobject.DefaultCurrency)
	resp := &SummaryResponse{
		ScopeKey:      s.ScopeKey,
		From:          s.Range.From,
		To:            s.Range.To,
		Currency:      cur.String(),
		TotalAmount:   s.TotalAmount,
		TotalDisplay:  cur.Format(s.TotalAmount),
		EntryCount:    s.EntryCount,
		ByMonth:       make([]MonthResponse, len(s.ByMonth)),
		TopVendors:    toGroupResponses(s.TopVendors, cur),
		TopCategories: toGroupResponses(s.TopCategories, cur),
	}
	for i, m := range s.ByMonth {
		resp.ByMonth[i] = MonthResponse{
			Month:   m.Month,
			Amount:  m.Amount,
			Display: cur.Format(m.Amount),
			Count:   m.Count,
		}
	}
	return resp
}

func toGroupResponses(groups []ledger.GroupTotal, cur valueobject.Currency) []GroupResponse {
	out := make([]GroupResponse, len(groups))
	for i, g := range groups {
		out[i] = GroupResponse{
			Label:   g.Label,
			Amount:  g.Amount,
			Display: cur.Format(g.Amount),
			Count:   g.Count,
		}
	}
	return out
}

// ToEntryResponse converts a domain Entry
func ToEntryResponse(e *ledger.Entry) EntryResponse {
	resp := EntryResponse{
		ID:            e.ID.String(),
		VendorName:    e.VendorName,
		Category:      e.CategoryLabel(),
		ItemName:      e.ItemName,
		CatalogNumber: e.CatalogNumber,
		Unit:          e.Unit,
		Quantity:      e.Quantity,
		UnitPrice:     e.UnitPrice,
		Amount:        e.Amount,
		AmountDisplay: e.Currency.OrDefault(valueobject.DefaultCurrency).Format(e.Amount),
		Currency:      e.Currency.String(),
		PurchasedAt:   e.PurchasedAt,
		Provenance:    string(e.Provenance),
	}
	if e.QuoteID != nil {
		id := e.QuoteID.String()
		resp.QuoteID = &id
	}
	if e.SourceLineItemID != nil {
		id := e.SourceLineItemID.String()
		resp.SourceLineItemID = &id
	}
	return resp
}
