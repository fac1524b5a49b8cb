package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFinalizer returns the scripted errors in order, then succeeds
type scriptedFinalizer struct {
	errs  []error
	calls int
}

func (f *scriptedFinalizer) Finalize(_ context.Context, _ uuid.UUID, _ ledger.Scope) (*FinalizeResult, error) {
	f.calls++
	if f.calls <= len(f.errs) {
		return nil, f.errs[f.calls-1]
	}
	return &FinalizeResult{CreatedCount: 2}, nil
}

func fastPolicy(attempts uint) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestRetryingFinalizer_RetriesConflicts(t *testing.T) {
	next := &scriptedFinalizer{errs: []error{shared.ErrSerializationConflict, shared.ErrTransactionTimeout}}

	result, err := FinalizeWithRetry(context.Background(), next, testQuoteID, testScope, fastPolicy(3))
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Equal(t, 3, next.calls)
}

func TestRetryingFinalizer_GivesUpAfterMaxAttempts(t *testing.T) {
	next := &scriptedFinalizer{errs: []error{
		shared.ErrSerializationConflict,
		shared.ErrSerializationConflict,
		shared.ErrSerializationConflict,
	}}

	_, err := FinalizeWithRetry(context.Background(), next, testQuoteID, testScope, fastPolicy(3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrSerializationConflict))
	assert.Equal(t, 3, next.calls)
}

func TestRetryingFinalizer_PermanentErrorsAreNotRetried(t *testing.T) {
	for _, permanent := range []error{shared.ErrNotFound, shared.ErrInvalidState, errors.New("disk full")} {
		next := &scriptedFinalizer{errs: []error{permanent}}

		_, err := FinalizeWithRetry(context.Background(), next, testQuoteID, testScope, fastPolicy(3))
		require.Error(t, err)
		assert.True(t, errors.Is(err, permanent))
		assert.Equal(t, 1, next.calls)
	}
}

func TestRetryingFinalizer_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	next := &scriptedFinalizer{errs: []error{shared.ErrSerializationConflict, shared.ErrSerializationConflict}}

	_, err := NewRetryingFinalizer(next, RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second}, nil).
		Finalize(ctx, testQuoteID, testScope)
	require.Error(t, err)
	assert.LessOrEqual(t, next.calls, 1)
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, uint(3), p.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, p.BaseDelay)
}
