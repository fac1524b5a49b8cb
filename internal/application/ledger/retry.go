package ledger

import (
	"context"
	"time"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/bioinsight/backend/internal/infrastructure/telemetry"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RetryPolicy bounds caller-side retries of a conflicted finalization
type RetryPolicy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy returns 3 attempts starting at 50ms
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   50 * time.Millisecond,
		MaxDelay:    time.Second,
	}
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if p.BaseDelay > 0 {
		b.InitialInterval = p.BaseDelay
	}
	if p.MaxDelay > 0 {
		b.MaxInterval = p.MaxDelay
	}
	return b
}

// RetryingFinalizer wraps a Finalizer and re-runs the whole finalization when
// it fails with a retryable error. Permanent errors return immediately.
type RetryingFinalizer struct {
	next    Finalizer
	policy  RetryPolicy
	logger  *zap.Logger
	metrics *telemetry.LedgerMetrics
}

// NewRetryingFinalizer creates a RetryingFinalizer
func NewRetryingFinalizer(next Finalizer, policy RetryPolicy, log *zap.Logger) *RetryingFinalizer {
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = DefaultRetryPolicy().MaxAttempts
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RetryingFinalizer{next: next, policy: policy, logger: log}
}

// SetLedgerMetrics sets the ledger metrics recorder
func (r *RetryingFinalizer) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	r.metrics = m
}

// Finalize implements Finalizer
func (r *RetryingFinalizer) Finalize(ctx context.Context, quoteID uuid.UUID, scope ledger.Scope) (*FinalizeResult, error) {
	op := func() (*FinalizeResult, error) {
		result, err := r.next.Finalize(ctx, quoteID, scope)
		if err != nil && !shared.IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return result, err
	}
	notify := func(err error, wait time.Duration) {
		r.metrics.RecordFinalizeRetry(ctx, string(scope.Kind))
		r.logger.Info("Retrying quote finalization",
			zap.String("quote_id", quoteID.String()),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(r.policy.backOff()),
		backoff.WithMaxTries(r.policy.MaxAttempts),
		backoff.WithNotify(notify),
	)
}

// FinalizeWithRetry runs one finalization through a RetryingFinalizer
func FinalizeWithRetry(ctx context.Context, finalizer Finalizer, quoteID uuid.UUID, scope ledger.Scope, policy RetryPolicy) (*FinalizeResult, error) {
	return NewRetryingFinalizer(finalizer, policy, nil).Finalize(ctx, quoteID, scope)
}

var _ Finalizer = (*RetryingFinalizer)(nil)
