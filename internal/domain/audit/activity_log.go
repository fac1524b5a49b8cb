// Package audit holds the activity log records written for domain events.
// Activity logs are a best-effort sink: nothing reads them to make decisions.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityLog is one recorded domain event
type ActivityLog struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	ScopeKey      string
	AggregateType string
	AggregateID   uuid.UUID
	Payload       json.RawMessage
	OccurredAt    time.Time
	CreatedAt     time.Time
}

// NewActivityLogFromEvent captures a domain event, payload included
func NewActivityLogFromEvent(event shared.DomainEvent) (*ActivityLog, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", event.EventType(), err)
	}
	return &ActivityLog{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		ScopeKey:      event.ScopeKey(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		Payload:       payload,
		OccurredAt:    event.OccurredAt(),
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// ActivityLogRepository persists activity logs
type ActivityLogRepository interface {
	// Append stores the log; appending the same event twice is a no-op
	Append(ctx context.Context, log *ActivityLog) error
}
