package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	appledger "github.com/bioinsight/backend/internal/application/ledger"
	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/bioinsight/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testScope = ledger.Scope{Kind: ledger.ScopeOrganization, ID: "org-1"}

func newFinalizer(db *gorm.DB) *appledger.FinalizationService {
	return appledger.NewFinalizationService(NewGormLedgerTransactionScope(db), appledger.FinalizationConfig{
		Timeout:         5 * time.Second,
		DefaultCurrency: valueobject.KRW,
	}, nil)
}

func TestFinalization_SQLite_Idempotent(t *testing.T) {
	db := newSQLiteDB(t)
	seeded := seedQuote(t, db, testScopeKey, "ACCEPTED")
	finalizer := newFinalizer(db)
	ctx := context.Background()

	first, err := finalizer.Finalize(ctx, seeded.QuoteID, testScope)
	require.NoError(t, err)
	assert.False(t, first.AlreadyFinalized)
	assert.Equal(t, 2, first.CreatedCount)

	second, err := finalizer.Finalize(ctx, seeded.QuoteID, testScope)
	require.NoError(t, err)
	assert.True(t, second.AlreadyFinalized)
	assert.Zero(t, second.CreatedCount)

	var rows []models.LedgerEntryModel
	require.NoError(t, db.Where("quote_id = ?", seeded.QuoteID).Order("amount ASC").Find(&rows).Error)
	require.Len(t, rows, 2)

	explicit, offered := rows[0], rows[1]
	assert.True(t, explicit.Amount.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, ledger.UnknownVendor, explicit.VendorName)
	assert.Nil(t, explicit.Category)

	// 1999.5 rounds half away from zero to 2000 won
	assert.Equal(t, "BioSupply", offered.VendorName)
	assert.True(t, offered.UnitPrice.Decimal.Equal(decimal.NewFromInt(2000)))
	assert.True(t, offered.Amount.Equal(decimal.NewFromInt(6000)))
	require.NotNil(t, offered.Category)
	assert.Equal(t, "REAGENT", *offered.Category)
	assert.Equal(t, string(ledger.ProvenanceQuote), offered.Provenance)
	assert.Equal(t, testScopeKey, offered.ScopeKey)
}

func TestFinalization_SQLite_Concurrent(t *testing.T) {
	db := newSQLiteDB(t)
	seeded := seedQuote(t, db, testScopeKey, "ACCEPTED")
	finalizer := newFinalizer(db)

	const callers = 8
	results := make([]*appledger.FinalizeResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = appledger.FinalizeWithRetry(context.Background(), finalizer, seeded.QuoteID, testScope, appledger.DefaultRetryPolicy())
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		if !results[i].AlreadyFinalized {
			created++
			assert.Equal(t, 2, results[i].CreatedCount)
		}
	}
	assert.Equal(t, 1, created)

	count, err := NewGormLedgerEntryRepository(db).CountForQuote(context.Background(), seeded.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestFinalization_SQLite_FailuresWriteNothing(t *testing.T) {
	db := newSQLiteDB(t)
	finalizer := newFinalizer(db)
	ctx := context.Background()

	t.Run("cancelled quote", func(t *testing.T) {
		seeded := seedQuote(t, db, testScopeKey, "CANCELLED")
		_, err := finalizer.Finalize(ctx, seeded.QuoteID, testScope)
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		count, err := NewGormLedgerEntryRepository(db).CountForQuote(ctx, seeded.QuoteID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("quote in another scope", func(t *testing.T) {
		seeded := seedQuote(t, db, "guest:g-9", "ACCEPTED")
		_, err := finalizer.Finalize(ctx, seeded.QuoteID, testScope)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormLedgerTransactionScope_RollsBackOnError(t *testing.T) {
	db := newSQLiteDB(t)
	scope := NewGormLedgerTransactionScope(db)
	ctx := context.Background()

	quoteID, lineID := uuid.New(), uuid.New()
	boom := errors.New("boom after insert")

	err := scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		inserted, err := repos.Entries().CreateBatch(ctx, []*ledger.Entry{
			newEntry(testScopeKey, &quoteID, &lineID, "A", 100, time.Now().UTC()),
		})
		require.NoError(t, err)
		require.Equal(t, int64(1), inserted)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := NewGormLedgerEntryRepository(db).CountForQuote(ctx, quoteID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGormLedgerTransactionScope_TranslatesSerializationFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})

	err = NewGormLedgerTransactionScope(gormDB).Execute(context.Background(), func(appledger.TransactionalRepositories) error {
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrSerializationConflict)
	assert.True(t, shared.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
