package persistence

import (
	"context"
	"fmt"

	"github.com/bioinsight/backend/internal/domain/audit"
	"github.com/bioinsight/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormActivityLogRepository implements audit.ActivityLogRepository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Append stores the log, ignoring a second delivery of the same event
func (r *GormActivityLogRepository) Append(ctx context.Context, log *audit.ActivityLog) error {
	model := models.ActivityLogModelFromDomain(log)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	return nil
}

// Ensure GormActivityLogRepository implements the interface
var _ audit.ActivityLogRepository = (*GormActivityLogRepository)(nil)
