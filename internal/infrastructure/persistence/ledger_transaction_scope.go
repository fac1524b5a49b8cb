package persistence

import (
	"context"
	"database/sql"

	appledger "github.com/bioinsight/backend/internal/application/ledger"
	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/procurement"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope implements TransactionScope using GORM
// transactions at serializable isolation.
type GormLedgerTransactionScope struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope.
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{
		db:   db,
		opts: &sql.TxOptions{Isolation: sql.LevelSerializable},
	}
}

// Execute runs the given function within a serializable database transaction.
// If the function returns an error, the transaction is rolled back.
// Driver failures are translated with TranslateTxError.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormLedgerRepositories{tx: tx}
		return fn(repos)
	}, s.opts)
	return TranslateTxError(ctx, err)
}

// gormLedgerRepositories provides access to all repositories within a transaction.
type gormLedgerRepositories struct {
	tx *gorm.DB
}

// Entries returns the ledger entry repository scoped to the current transaction.
func (r *gormLedgerRepositories) Entries() ledger.EntryWriter {
	return NewGormLedgerEntryRepository(r.tx)
}

// Quotes returns the quote repository scoped to the current transaction.
func (r *gormLedgerRepositories) Quotes() procurement.QuoteReader {
	return NewGormQuoteRepository(r.tx)
}

// Offers returns the vendor offer repository scoped to the current transaction.
func (r *gormLedgerRepositories) Offers() procurement.VendorOfferReader {
	return NewGormVendorOfferRepository(r.tx)
}

// Ensure GormLedgerTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)

// Ensure gormLedgerRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormLedgerRepositories)(nil)
