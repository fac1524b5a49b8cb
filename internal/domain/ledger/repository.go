package ledger

import (
	"context"

	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EntryWriter is the write side used during finalization.
// Entries are append-only: there is no update or delete method.
type EntryWriter interface {
	// ExistsForQuote reports whether any entry was already created for the quote
	ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error)

	// CreateBatch inserts entries, skipping rows whose (quote id, line item id)
	// already exists. Returns the number of rows actually inserted.
	CreateBatch(ctx context.Context, entries []*Entry) (int64, error)
}

// EntryReader is the read side used by reporting
type EntryReader interface {
	// StreamRange calls fn for every entry of the scope purchased within r.
	// Iteration stops at the first error returned by fn.
	StreamRange(ctx context.Context, scopeKey string, r DateRange, fn func(*Entry) error) error

	// FindByScope returns a page of entries, newest purchase first, and the total count
	FindByScope(ctx context.Context, scopeKey string, filter shared.Filter) ([]Entry, int64, error)

	// CountForQuote counts entries created for a quote
	CountForQuote(ctx context.Context, quoteID uuid.UUID) (int64, error)
}

// EntryRepository combines both sides
type EntryRepository interface {
	EntryWriter
	EntryReader
}
