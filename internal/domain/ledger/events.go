package ledger

import (
	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeQuote = "Quote"

// Event type constants
const (
	EventTypeQuoteFinalized = "QuoteFinalized"
)

// QuoteFinalizedEvent is raised after a quote's ledger entries are committed
type QuoteFinalizedEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID            `json:"quote_id"`
	EntryCount  int                  `json:"entry_count"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	Currency    valueobject.Currency `json:"currency"`
}

// NewQuoteFinalizedEvent creates a new QuoteFinalizedEvent from the created entries
func NewQuoteFinalizedEvent(scope Scope, quoteID uuid.UUID, entries []*Entry) *QuoteFinalizedEvent {
	total := decimal.Zero
	var cur valueobject.Currency
	for _, e := range entries {
		total = total.Add(e.Amount)
		if cur == "" {
			cur = e.Currency
		}
	}
	return &QuoteFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteFinalized, AggregateTypeQuote, quoteID, scope.String()),
		QuoteID:         quoteID,
		EntryCount:      len(entries),
		TotalAmount:     total,
		Currency:        cur,
	}
}

// EventType returns the event type name
func (e *QuoteFinalizedEvent) EventType() string {
	return EventTypeQuoteFinalized
}
