package ledger

import (
	"context"
	"time"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/bioinsight/backend/internal/infrastructure/logger"
	"github.com/bioinsight/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultSummaryTimeout bounds one summary read
const DefaultSummaryTimeout = 10 * time.Second

// SummaryCache stores computed summaries for a short time
type SummaryCache interface {
	Get(ctx context.Context, key string) (*ledger.Summary, bool, error)
	Set(ctx context.Context, key string, summary *ledger.Summary, ttl time.Duration) error
}

// ReportConfig configures ReportService
type ReportConfig struct {
	Timeout     time.Duration
	Currency    valueobject.Currency
	CacheTTL    time.Duration
	MaxPageSize int
}

// ReportService computes spend reports from the ledger. It never writes.
type ReportService struct {
	entries ledger.EntryReader
	config  ReportConfig
	cache   SummaryCache
	logger  *zap.Logger
	metrics *telemetry.LedgerMetrics
}

// NewReportService creates a new ReportService
func NewReportService(entries ledger.EntryReader, cfg ReportConfig, log *zap.Logger) *ReportService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSummaryTimeout
	}
	if !cfg.Currency.IsValid() {
		cfg.Currency = valueobject.DefaultCurrency
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{
		entries: entries,
		config:  cfg,
		logger:  log,
	}
}

// SetSummaryCache enables read-through caching of summaries
func (s *ReportService) SetSummaryCache(cache SummaryCache) {
	s.cache = cache
}

// SetLedgerMetrics sets the ledger metrics recorder
func (s *ReportService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// Summarize aggregates the scope's ledger rows purchased in [from, to) in a
// single streaming pass: total, monthly buckets and the top vendors and
// categories by amount.
func (s *ReportService) Summarize(ctx context.Context, scope ledger.Scope, from, to time.Time) (*SummaryResponse, error) {
	if scope.IsZero() {
		return nil, shared.ErrInvalidInput.WithMessage("scope is required")
	}
	r, err := ledger.NewDateRange(from, to)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	log := logger.WithLogger(ctx, s.logger).Zap()
	key := SummaryCacheKey(scope, r)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn("Summary cache read failed", zap.Error(err))
		} else if ok {
			s.metrics.RecordSummary(ctx, string(scope.Kind), true, cached.EntryCount, time.Since(start))
			return ToSummaryResponse(cached), nil
		}
	}

	readCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	agg := ledger.NewAggregator()
	err = s.entries.StreamRange(readCtx, scope.String(), r, func(e *ledger.Entry) error {
		agg.Add(e)
		return nil
	})
	if err != nil {
		if readCtx.Err() != nil {
			return nil, shared.ErrTransactionTimeout.Wrap(err)
		}
		return nil, err
	}

	summary := agg.Summary(ledger.TopGroupLimit)
	summary.ScopeKey = scope.String()
	summary.Range = r
	summary.Currency = s.config.Currency

	s.metrics.RecordSummary(ctx, string(scope.Kind), false, summary.EntryCount, time.Since(start))
	log.Debug("Summary computed",
		zap.Int("entry_count", summary.EntryCount),
		zap.Duration("elapsed", time.Since(start)),
	)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, &summary, s.config.CacheTTL); err != nil {
			log.Warn("Summary cache write failed", zap.Error(err))
		}
	}

	return ToSummaryResponse(&summary), nil
}

// ListEntries returns a page of the scope's ledger rows, newest purchase first
func (s *ReportService) ListEntries(ctx context.Context, scope ledger.Scope, filter shared.Filter) (*shared.Paginated[EntryResponse], error) {
	if scope.IsZero() {
		return nil, shared.ErrInvalidInput.WithMessage("scope is required")
	}
	filter = filter.Normalize(s.config.MaxPageSize)

	readCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	entries, total, err := s.entries.FindByScope(readCtx, scope.String(), filter)
	if err != nil {
		return nil, err
	}

	items := make([]EntryResponse, len(entries))
	for i := range entries {
		items[i] = ToEntryResponse(&entries[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SummaryCacheKey identifies a summary by scope and range
func SummaryCacheKey(scope ledger.Scope, r ledger.DateRange) string {
	return scope.String() + "|" + r.From.Format(time.RFC3339) + "|" + r.To.Format(time.RFC3339)
}
