package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/procurement"
	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/bioinsight/backend/internal/infrastructure/logger"
	"github.com/bioinsight/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultFinalizeTimeout bounds one finalization transaction
const DefaultFinalizeTimeout = 5 * time.Second

// FinalizeResult reports what a finalization call did
type FinalizeResult struct {
	AlreadyFinalized bool `json:"already_finalized"`
	CreatedCount     int  `json:"created_count"`
}

// Finalizer converts a quote into ledger entries
type Finalizer interface {
	Finalize(ctx context.Context, quoteID uuid.UUID, scope ledger.Scope) (*FinalizeResult, error)
}

// FinalizationConfig configures FinalizationService
type FinalizationConfig struct {
	Timeout         time.Duration
	DefaultCurrency valueobject.Currency
	// Clock stamps purchased_at; defaults to time.Now
	Clock func() time.Time
}

// FinalizationService materializes ledger entries for a quote exactly once
type FinalizationService struct {
	txScope        TransactionScope
	config         FinalizationConfig
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
}

// NewFinalizationService creates a new FinalizationService
func NewFinalizationService(txScope TransactionScope, cfg FinalizationConfig, log *zap.Logger) *FinalizationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFinalizeTimeout
	}
	if !cfg.DefaultCurrency.IsValid() {
		cfg.DefaultCurrency = valueobject.DefaultCurrency
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FinalizationService{
		txScope: txScope,
		config:  cfg,
		logger:  log,
	}
}

// SetEventPublisher sets the publisher that receives QuoteFinalized events
func (s *FinalizationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLedgerMetrics sets the ledger metrics recorder
func (s *FinalizationService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// Finalize creates one ledger entry per line item of the quote, inside a
// single serializable transaction. A quote that already has entries is
// reported as AlreadyFinalized without writing anything. Serialization
// conflicts and timeouts are returned to the caller, never retried here.
func (s *FinalizationService) Finalize(ctx context.Context, quoteID uuid.UUID, scope ledger.Scope) (*FinalizeResult, error) {
	if scope.IsZero() {
		return nil, shared.ErrInvalidInput.WithMessage("scope is required")
	}
	if quoteID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("quote id is required")
	}

	start := time.Now()
	log := s.requestLogger(ctx, scope).With(zap.String("quote_id", quoteID.String()))

	txCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var (
		result  FinalizeResult
		created []*ledger.Entry
	)
	err := s.txScope.Execute(txCtx, func(repos TransactionalRepositories) error {
		result, created = FinalizeResult{}, nil

		exists, err := repos.Entries().ExistsForQuote(txCtx, quoteID)
		if err != nil {
			return err
		}
		if exists {
			result.AlreadyFinalized = true
			return nil
		}

		quote, err := repos.Quotes().FindByIDForScope(txCtx, scope.String(), quoteID)
		if err != nil {
			return err
		}
		if err := quote.EnsureFinalizable(); err != nil {
			return err
		}

		offers, err := bestOffers(txCtx, repos.Offers(), quote)
		if err != nil {
			return err
		}

		entries := ledger.BuildQuoteEntries(scope, quote, offers, s.config.DefaultCurrency, s.config.Clock())
		inserted, err := repos.Entries().CreateBatch(txCtx, entries)
		if err != nil {
			return err
		}
		if inserted == 0 {
			// a concurrent finalization committed first
			result.AlreadyFinalized = true
			return nil
		}
		result.CreatedCount = int(inserted)
		created = entries
		return nil
	})

	s.metrics.RecordFinalize(ctx, string(scope.Kind), finalizeOutcome(result, err), result.CreatedCount, time.Since(start))

	if err != nil {
		log.Warn("Quote finalization failed", zap.Error(err))
		return nil, err
	}

	if result.AlreadyFinalized {
		log.Debug("Quote already finalized")
		return &result, nil
	}

	log.Info("Quote finalized", zap.Int("created_count", result.CreatedCount))
	s.publishFinalized(ctx, log, scope, quoteID, created)
	return &result, nil
}

// requestLogger enriches the service logger with request id, trace and scope
func (s *FinalizationService) requestLogger(ctx context.Context, scope ledger.Scope) *zap.Logger {
	l := logger.WithLogger(ctx, s.logger).Zap()
	if logger.GetScopeKey(ctx) == "" {
		l = l.With(zap.String("scope_key", scope.String()))
	}
	return l
}

// publishFinalized hands the event to the publisher after commit. Failures are
// logged only; the ledger rows are already durable.
func (s *FinalizationService) publishFinalized(ctx context.Context, log *zap.Logger, scope ledger.Scope, quoteID uuid.UUID, entries []*ledger.Entry) {
	if s.eventPublisher == nil {
		return
	}
	event := ledger.NewQuoteFinalizedEvent(scope, quoteID, entries)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		log.Error("Failed to publish quote finalized event",
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	}
}

// bestOffers loads the offers of every referenced product and keeps the best one per product
func bestOffers(ctx context.Context, reader procurement.VendorOfferReader, quote *procurement.Quote) (map[uuid.UUID]*procurement.VendorOffer, error) {
	ids := quote.ProductIDs()
	best := make(map[uuid.UUID]*procurement.VendorOffer, len(ids))
	if len(ids) == 0 {
		return best, nil
	}

	byProduct, err := reader.FindByProductIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for productID, offers := range byProduct {
		if offer := procurement.SelectBestOffer(offers); offer != nil {
			best[productID] = offer
		}
	}
	return best, nil
}

func finalizeOutcome(result FinalizeResult, err error) string {
	switch {
	case err == nil && result.AlreadyFinalized:
		return telemetry.OutcomeAlreadyFinalized
	case err == nil:
		return telemetry.OutcomeCreated
	case errors.Is(err, shared.ErrNotFound):
		return telemetry.OutcomeNotFound
	case errors.Is(err, shared.ErrInvalidState):
		return telemetry.OutcomeInvalidState
	case errors.Is(err, shared.ErrSerializationConflict):
		return telemetry.OutcomeConflict
	case errors.Is(err, shared.ErrTransactionTimeout):
		return telemetry.OutcomeTimeout
	default:
		return telemetry.OutcomeError
	}
}

var _ Finalizer = (*FinalizationService)(nil)
