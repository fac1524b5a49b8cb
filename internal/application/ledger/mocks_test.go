package ledger

import (
	"context"
	"time"

	"github.com/bioinsight/backend/internal/domain/audit"
	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/procurement"
	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEntryRepository is a mock implementation of ledger.EntryRepository
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	args := m.Called(ctx, quoteID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntryRepository) CreateBatch(ctx context.Context, entries []*ledger.Entry) (int64, error) {
	args := m.Called(ctx, entries)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntryRepository) StreamRange(ctx context.Context, scopeKey string, r ledger.DateRange, fn func(*ledger.Entry) error) error {
	args := m.Called(ctx, scopeKey, r, fn)
	if rows, ok := args.Get(0).([]*ledger.Entry); ok {
		for _, e := range rows {
			if err := fn(e); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

func (m *MockEntryRepository) FindByScope(ctx context.Context, scopeKey string, filter shared.Filter) ([]ledger.Entry, int64, error) {
	args := m.Called(ctx, scopeKey, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ledger.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockEntryRepository) CountForQuote(ctx context.Context, quoteID uuid.UUID) (int64, error) {
	args := m.Called(ctx, quoteID)
	return args.Get(0).(int64), args.Error(1)
}

// MockQuoteReader is a mock implementation of procurement.QuoteReader
type MockQuoteReader struct {
	mock.Mock
}

func (m *MockQuoteReader) FindByIDForScope(ctx context.Context, scopeKey string, id uuid.UUID) (*procurement.Quote, error) {
	args := m.Called(ctx, scopeKey, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Quote), args.Error(1)
}

// MockVendorOfferReader is a mock implementation of procurement.VendorOfferReader
type MockVendorOfferReader struct {
	mock.Mock
}

func (m *MockVendorOfferReader) FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]procurement.VendorOffer, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]procurement.VendorOffer), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockSummaryCache is a mock implementation of SummaryCache
type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) Get(ctx context.Context, key string) (*ledger.Summary, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*ledger.Summary), args.Bool(1), args.Error(2)
}

func (m *MockSummaryCache) Set(ctx context.Context, key string, summary *ledger.Summary, ttl time.Duration) error {
	args := m.Called(ctx, key, summary, ttl)
	return args.Error(0)
}

// MockActivityLogRepository is a mock implementation of audit.ActivityLogRepository
type MockActivityLogRepository struct {
	mock.Mock
}

func (m *MockActivityLogRepository) Append(ctx context.Context, log *audit.ActivityLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

// failingTxScope fails Execute without running the body, like a commit-time conflict
type failingTxScope struct {
	err   error
	calls int
}

func (s *failingTxScope) Execute(_ context.Context, _ func(repos TransactionalRepositories) error) error {
	s.calls++
	return s.err
}
