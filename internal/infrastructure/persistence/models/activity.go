package models

import (
	"time"

	"github.com/bioinsight/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// ActivityLogModel is the persistence model for audit activity logs
type ActivityLogModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	EventType     string    `gorm:"type:varchar(100);not null;index"`
	ScopeKey      string    `gorm:"type:varchar(150);index"`
	AggregateType string    `gorm:"type:varchar(50)"`
	AggregateID   uuid.UUID `gorm:"type:uuid;index"`
	Payload       string    `gorm:"type:jsonb"`
	OccurredAt    time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ActivityLogModel) TableName() string {
	return "activity_logs"
}

// ActivityLogModelFromDomain creates a persistence model from a domain ActivityLog
func ActivityLogModelFromDomain(l *audit.ActivityLog) *ActivityLogModel {
	return &ActivityLogModel{
		ID:            l.ID,
		EventID:       l.EventID,
		EventType:     l.EventType,
		ScopeKey:      l.ScopeKey,
		AggregateType: l.AggregateType,
		AggregateID:   l.AggregateID,
		Payload:       string(l.Payload),
		OccurredAt:    l.OccurredAt,
		CreatedAt:     l.CreatedAt,
	}
}

// ToDomain converts the persistence model to a domain ActivityLog
func (m *ActivityLogModel) ToDomain() *audit.ActivityLog {
	return &audit.ActivityLog{
		ID:            m.ID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		ScopeKey:      m.ScopeKey,
		AggregateType: m.AggregateType,
		AggregateID:   m.AggregateID,
		Payload:       []byte(m.Payload),
		OccurredAt:    m.OccurredAt,
		CreatedAt:     m.CreatedAt,
	}
}

// AllModels lists every model managed by this service, in creation order
func AllModels() []any {
	return []any{
		&ProductModel{},
		&VendorOfferModel{},
		&QuoteModel{},
		&QuoteLineItemModel{},
		&LedgerEntryModel{},
		&ActivityLogModel{},
	}
}
