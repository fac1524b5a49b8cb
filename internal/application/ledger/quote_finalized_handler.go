package ledger

import (
	"context"
	"fmt"

	"github.com/bioinsight/backend/internal/domain/audit"
	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// QuoteFinalizedAuditHandler records QuoteFinalized events in the activity log
type QuoteFinalizedAuditHandler struct {
	repo   audit.ActivityLogRepository
	logger *zap.Logger
}

// NewQuoteFinalizedAuditHandler creates a new handler for quote finalized events
func NewQuoteFinalizedAuditHandler(repo audit.ActivityLogRepository, logger *zap.Logger) *QuoteFinalizedAuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteFinalizedAuditHandler{
		repo:   repo,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *QuoteFinalizedAuditHandler) EventTypes() []string {
	return []string{ledger.EventTypeQuoteFinalized}
}

// Handle appends one activity log row per event
func (h *QuoteFinalizedAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	finalized, ok := event.(*ledger.QuoteFinalizedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ledger.EventTypeQuoteFinalized),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ledger.EventTypeQuoteFinalized, event.EventType())
	}

	entry, err := audit.NewActivityLogFromEvent(finalized)
	if err != nil {
		return err
	}
	if err := h.repo.Append(ctx, entry); err != nil {
		h.logger.Error("failed to append activity log",
			zap.String("event_id", finalized.EventID().String()),
			zap.Error(err),
		)
		return fmt.Errorf("append activity log: %w", err)
	}

	h.logger.Debug("quote finalization recorded",
		zap.String("quote_id", finalized.QuoteID.String()),
		zap.Int("entry_count", finalized.EntryCount),
	)
	return nil
}

var _ shared.EventHandler = (*QuoteFinalizedAuditHandler)(nil)
