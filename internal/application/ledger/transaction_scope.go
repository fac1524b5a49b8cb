package ledger

import (
	"context"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/procurement"
)

// TransactionScope runs finalization work inside a single serializable
// database transaction. Implementations translate write conflicts into
// shared.ErrSerializationConflict and deadline overruns into
// shared.ErrTransactionTimeout.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories used during
// finalization. All repositories returned share the same underlying transaction.
type TransactionalRepositories interface {
	// Entries returns the ledger entry writer scoped to the current transaction
	Entries() ledger.EntryWriter
	// Quotes returns the quote reader scoped to the current transaction
	Quotes() procurement.QuoteReader
	// Offers returns the vendor offer reader scoped to the current transaction
	Offers() procurement.VendorOfferReader
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	entries ledger.EntryWriter
	quotes  procurement.QuoteReader
	offers  procurement.VendorOfferReader
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(entries ledger.EntryWriter, quotes procurement.QuoteReader, offers procurement.VendorOfferReader) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		entries: entries,
		quotes:  quotes,
		offers:  offers,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Entries returns the ledger entry writer.
func (s *NoOpTransactionScope) Entries() ledger.EntryWriter {
	return s.entries
}

// Quotes returns the quote reader.
func (s *NoOpTransactionScope) Quotes() procurement.QuoteReader {
	return s.quotes
}

// Offers returns the vendor offer reader.
func (s *NoOpTransactionScope) Offers() procurement.VendorOfferReader {
	return s.offers
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
