package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/procurement"
	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/bioinsight/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

var (
	testScope   = ledger.Scope{Kind: ledger.ScopeOrganization, ID: "org-1"}
	testQuoteID = uuid.MustParse("5b2a2f7e-5d0c-4c1e-9a55-0c5b7a3f1e01")
	testNow     = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type finalizeFixture struct {
	entries   *MockEntryRepository
	quotes    *MockQuoteReader
	offers    *MockVendorOfferReader
	publisher *MockEventPublisher
	service   *FinalizationService
}

func newFinalizeFixture() *finalizeFixture {
	f := &finalizeFixture{
		entries:   new(MockEntryRepository),
		quotes:    new(MockQuoteReader),
		offers:    new(MockVendorOfferReader),
		publisher: new(MockEventPublisher),
	}
	scope := NewNoOpTransactionScope(f.entries, f.quotes, f.offers)
	f.service = NewFinalizationService(scope, FinalizationConfig{
		Timeout:         time.Second,
		DefaultCurrency: valueobject.KRW,
		Clock:           func() time.Time { return testNow },
	}, zap.NewNop())
	f.service.SetEventPublisher(f.publisher)
	return f
}

// twoItemQuote has one explicitly priced item and one item priced from vendor offers
func twoItemQuote() (*procurement.Quote, uuid.UUID) {
	productID := uuid.New()
	reagent := procurement.CategoryReagent
	return &procurement.Quote{
		BaseEntity: shared.BaseEntity{ID: testQuoteID},
		ScopeKey:   testScope.String(),
		Status:     procurement.QuoteStatusAccepted,
		Items: []procurement.LineItem{
			{
				ID:        uuid.New(),
				QuoteID:   testQuoteID,
				ItemName:  "Pipette tips",
				Quantity:  2,
				UnitPrice: decPtr("1500"),
			},
			{
				ID:        uuid.New(),
				QuoteID:   testQuoteID,
				ProductID: &productID,
				Product:   &procurement.Product{ID: productID, Name: "Taq polymerase", Category: &reagent},
				Quantity:  3,
			},
		},
	}, productID
}

func TestFinalizationService_Finalize_CreatesEntries(t *testing.T) {
	f := newFinalizeFixture()
	quote, productID := twoItemQuote()

	f.entries.On("ExistsForQuote", mock.Anything, testQuoteID).Return(false, nil)
	f.quotes.On("FindByIDForScope", mock.Anything, testScope.String(), testQuoteID).Return(quote, nil)
	f.offers.On("FindByProductIDs", mock.Anything, []uuid.UUID{productID}).Return(map[uuid.UUID][]procurement.VendorOffer{
		productID: {
			{ProductID: productID, VendorName: "Expensive Co", Price: decPtr("1200")},
			{ProductID: productID, VendorName: "BioSupply", Price: decPtr("999.6")},
			{ProductID: productID, VendorName: "No Price Inc"},
		},
	}, nil)

	var written []*ledger.Entry
	f.entries.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*ledger.Entry")).
		Run(func(args mock.Arguments) { written = args.Get(1).([]*ledger.Entry) }).
		Return(int64(2), nil)

	var published []shared.DomainEvent
	f.publisher.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(1).([]shared.DomainEvent) }).
		Return(nil)

	result, err := f.service.Finalize(context.Background(), testQuoteID, testScope)
	require.NoError(t, err)
	assert.False(t, result.AlreadyFinalized)
	assert.Equal(t, 2, result.CreatedCount)

	require.Len(t, written, 2)
	first, second := written[0], written[1]

	assert.Equal(t, ledger.UnknownVendor, first.VendorName)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "Pipette tips", first.ItemName)
	assert.Nil(t, first.Category)

	assert.Equal(t, "BioSupply", second.VendorName)
	require.NotNil(t, second.UnitPrice)
	assert.True(t, second.UnitPrice.Equal(decimal.NewFromInt(1000)), "offer price rounds to whole won")
	assert.True(t, second.Amount.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "REAGENT", second.CategoryLabel())

	for _, e := range written {
		assert.Equal(t, testScope.String(), e.ScopeKey)
		assert.Equal(t, ledger.ProvenanceQuote, e.Provenance)
		assert.Equal(t, valueobject.KRW, e.Currency)
		assert.Equal(t, testNow, e.PurchasedAt)
		require.NotNil(t, e.QuoteID)
		assert.Equal(t, testQuoteID, *e.QuoteID)
	}

	require.Len(t, published, 1)
	event, ok := published[0].(*ledger.QuoteFinalizedEvent)
	require.True(t, ok)
	assert.Equal(t, 2, event.EntryCount)
	assert.True(t, event.TotalAmount.Equal(decimal.NewFromInt(6000)))
	assert.Equal(t, testScope.String(), event.ScopeKey())
}

func TestFinalizationService_Finalize_AlreadyFinalized(t *testing.T) {
	f := newFinalizeFixture()
	f.entries.On("ExistsForQuote", mock.Anything, testQuoteID).Return(true, nil)

	result, err := f.service.Finalize(context.Background(), testQuoteID, testScope)
	require.NoError(t, err)
	assert.True(t, result.AlreadyFinalized)
	assert.Zero(t, result.CreatedCount)

	f.quotes.AssertNotCalled(t, "FindByIDForScope", mock.Anything, mock.Anything, mock.Anything)
	f.entries.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestFinalizationService_Finalize_ConcurrentWinner(t *testing.T) {
	f := newFinalizeFixture()
	quote, productID := twoItemQuote()

	f.entries.On("ExistsForQuote", mock.Anything, testQuoteID).Return(false, nil)
	f.quotes.On("FindByIDForScope", mock.Anything, testScope.String(), testQuoteID).Return(quote, nil)
	f.offers.On("FindByProductIDs", mock.Anything, []uuid.UUID{productID}).Return(map[uuid.UUID][]procurement.VendorOffer{}, nil)
	f.entries.On("CreateBatch", mock.Anything, mock.Anything).Return(int64(0), nil)

	result, err := f.service.Finalize(context.Background(), testQuoteID, testScope)
	require.NoError(t, err)
	assert.True(t, result.AlreadyFinalized)
	assert.Zero(t, result.CreatedCount)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestFinalizationService_Finalize_PermanentFailures(t *testing.T) {
	t.Run("quote not found in scope", func(t *testing.T) {
		f := newFinalizeFixture()
		f.entries.On("ExistsForQuote", mock.Anything, testQuoteID).Return(false, nil)
		f.quotes.On("FindByIDForScope", mock.Anything, testScope.String(), testQuoteID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Finalize(context.Background(), testQuoteID, testScope)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.False(t, shared.IsRetryable(err))
		f.entries.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("quote without line items", func(t *testing.T) {
		f := newFinalizeFixture()
		empty := &procurement.Quote{BaseEntity: shared.BaseEntity{ID: testQuoteID}, Status: procurement.QuoteStatusAccepted}
		f.entries.On("ExistsForQuote", mock.Anything, testQuoteID).Return(false, nil)
		f.quotes.On("FindByIDForScope", mock.Anything, testScope.String(), testQuoteID).Return(empty, nil)

		_, err := f.service.Finalize(context.Background(), testQuoteID, testScope)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		f.entries.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("cancelled quote", func(t *testing.T) {
		f := newFinalizeFixture()
		quote, _ := twoItemQuote()
		quote.Status = procurement.QuoteStatusCancelled
		f.entries.On("ExistsForQuote", mock.Anything, testQuoteID).Return(false, nil)
		f.quotes.On("FindByIDForScope", mock.Anything, testScope.String(), testQuoteID).Return(quote, nil)

		_, err := f.service.Finalize(context.Background(), testQuoteID, testScope)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		f.entries.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("missing scope", func(t *testing.T) {
		f := newFinalizeFixture()
		_, err := f.service.Finalize(context.Background(), testQuoteID, ledger.Scope{})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestFinalizationService_Finalize_TransientFailureIsReturned(t *testing.T) {
	scope := &failingTxScope{err: shared.ErrSerializationConflict}
	service := NewFinalizationService(scope, FinalizationConfig{}, nil)

	_, err := service.Finalize(context.Background(), testQuoteID, testScope)
	require.Error(t, err)
	assert.True(t, shared.IsRetryable(err))
	assert.Equal(t, 1, scope.calls, "the service never retries on its own")
}

func TestFinalizationService_Finalize_PublishFailureIsSwallowed(t *testing.T) {
	f := newFinalizeFixture()
	quote, productID := twoItemQuote()

	f.entries.On("ExistsForQuote", mock.Anything, testQuoteID).Return(false, nil)
	f.quotes.On("FindByIDForScope", mock.Anything, testScope.String(), testQuoteID).Return(quote, nil)
	f.offers.On("FindByProductIDs", mock.Anything, []uuid.UUID{productID}).Return(map[uuid.UUID][]procurement.VendorOffer{}, nil)
	f.entries.On("CreateBatch", mock.Anything, mock.Anything).Return(int64(2), nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus down"))

	result, err := f.service.Finalize(context.Background(), testQuoteID, testScope)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedCount)
}

func TestFinalizationService_Finalize_CurrencyFallback(t *testing.T) {
	f := newFinalizeFixture()
	quote, productID := twoItemQuote()
	quote.Currency = valueobject.USD
	quote.Items[0].Currency = valueobject.EUR

	f.entries.On("ExistsForQuote", mock.Anything, testQuoteID).Return(false, nil)
	f.quotes.On("FindByIDForScope", mock.Anything, testScope.String(), testQuoteID).Return(quote, nil)
	f.offers.On("FindByProductIDs", mock.Anything, []uuid.UUID{productID}).Return(map[uuid.UUID][]procurement.VendorOffer{
		productID: {{ProductID: productID, VendorName: "BioSupply", Price: decPtr("10.555")}},
	}, nil)

	var written []*ledger.Entry
	f.entries.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).([]*ledger.Entry) }).
		Return(int64(2), nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.Finalize(context.Background(), testQuoteID, testScope)
	require.NoError(t, err)
	require.Len(t, written, 2)

	assert.Equal(t, valueobject.EUR, written[0].Currency)
	assert.Equal(t, valueobject.USD, written[1].Currency)
	assert.True(t, written[1].UnitPrice.Equal(decimal.RequireFromString("10.56")))
	assert.True(t, written[1].Amount.Equal(decimal.RequireFromString("31.68")))
}

func TestFinalizationService_Finalize_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	f := newFinalizeFixture()
	f.service.SetLedgerMetrics(metrics)
	f.entries.On("ExistsForQuote", mock.Anything, testQuoteID).Return(true, nil)

	_, err = f.service.Finalize(context.Background(), testQuoteID, testScope)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "ledger.finalize.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)
			outcome, _ := sum.DataPoints[0].Attributes.Value(telemetry.AttrOutcome)
			assert.Equal(t, telemetry.OutcomeAlreadyFinalized, outcome.AsString())
			found = true
		}
	}
	assert.True(t, found)
}

func TestFinalizeOutcome(t *testing.T) {
	tests := []struct {
		name   string
		result FinalizeResult
		err    error
		want   string
	}{
		{"created", FinalizeResult{CreatedCount: 1}, nil, telemetry.OutcomeCreated},
		{"already finalized", FinalizeResult{AlreadyFinalized: true}, nil, telemetry.OutcomeAlreadyFinalized},
		{"not found", FinalizeResult{}, shared.ErrNotFound, telemetry.OutcomeNotFound},
		{"invalid state", FinalizeResult{}, shared.ErrInvalidState, telemetry.OutcomeInvalidState},
		{"conflict", FinalizeResult{}, shared.ErrSerializationConflict.Wrap(errors.New("40001")), telemetry.OutcomeConflict},
		{"timeout", FinalizeResult{}, shared.ErrTransactionTimeout, telemetry.OutcomeTimeout},
		{"other", FinalizeResult{}, errors.New("boom"), telemetry.OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, finalizeOutcome(tt.result, tt.err))
		})
	}
}
