package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Finalize outcomes reported on ledger.finalize.total.
const (
	OutcomeCreated          = "created"
	OutcomeAlreadyFinalized = "already_finalized"
	OutcomeNotFound         = "not_found"
	OutcomeInvalidState     = "invalid_state"
	OutcomeConflict         = "conflict"
	OutcomeTimeout          = "timeout"
	OutcomeError            = "error"
)

// LedgerMetricsConfig holds dependencies for LedgerMetrics.
type LedgerMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// LedgerMetrics records finalization and reporting metrics for the purchase ledger.
// A nil *LedgerMetrics is valid and records nothing.
type LedgerMetrics struct {
	logger *zap.Logger

	finalizeTotal     *Counter
	finalizeRetries   *Counter
	entriesCreated    *Counter
	finalizeDuration  *Histogram
	summaryTotal      *Counter
	summaryDuration   *Histogram
	summaryEntryCount *Histogram
}

// NewLedgerMetrics creates the ledger instruments on the given meter.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &LedgerMetrics{logger: logger}
	var err error

	if m.finalizeTotal, err = NewCounter(cfg.Meter,
		"ledger.finalize.total",
		"Quote finalization attempts by outcome",
		"{finalization}",
	); err != nil {
		return nil, err
	}
	if m.finalizeRetries, err = NewCounter(cfg.Meter,
		"ledger.finalize.retries",
		"Finalization retries after a serialization conflict",
		"{retry}",
	); err != nil {
		return nil, err
	}
	if m.entriesCreated, err = NewCounter(cfg.Meter,
		"ledger.entries.created",
		"Ledger entries written by finalization",
		"{entry}",
	); err != nil {
		return nil, err
	}
	if m.finalizeDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ledger.finalize.duration",
		Description: "Quote finalization duration",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.summaryTotal, err = NewCounter(cfg.Meter,
		"ledger.summary.total",
		"Spending summary requests",
		"{summary}",
	); err != nil {
		return nil, err
	}
	if m.summaryDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ledger.summary.duration",
		Description: "Spending summary computation duration",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.summaryEntryCount, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ledger.summary.entries",
		Description: "Entries scanned per spending summary",
		Unit:        "{entry}",
		Boundaries:  []float64{0, 10, 100, 1000, 10000, 100000},
	}); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordFinalize records one finalization call.
func (m *LedgerMetrics) RecordFinalize(ctx context.Context, scopeKind, outcome string, created int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrScopeKind.String(scopeKind), AttrOutcome.String(outcome)}
	m.finalizeTotal.Inc(ctx, attrs...)
	m.finalizeDuration.RecordDuration(ctx, d, attrs...)
	if created > 0 {
		m.entriesCreated.Add(ctx, int64(created), AttrScopeKind.String(scopeKind))
	}
}

// RecordFinalizeRetry records a retry of a conflicted finalization.
func (m *LedgerMetrics) RecordFinalizeRetry(ctx context.Context, scopeKind string) {
	if m == nil {
		return
	}
	m.finalizeRetries.Inc(ctx, AttrScopeKind.String(scopeKind))
}

// RecordSummary records one spending summary request.
func (m *LedgerMetrics) RecordSummary(ctx context.Context, scopeKind string, cacheHit bool, entries int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrScopeKind.String(scopeKind), AttrCacheHit.Bool(cacheHit)}
	m.summaryTotal.Inc(ctx, attrs...)
	m.summaryDuration.RecordDuration(ctx, d, attrs...)
	if !cacheHit {
		m.summaryEntryCount.Record(ctx, float64(entries), AttrScopeKind.String(scopeKind))
	}
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
