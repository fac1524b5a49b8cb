package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/bioinsight/backend/internal/domain/procurement"
	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/bioinsight/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQuoteRepository implements procurement.QuoteReader using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByIDForScope loads a quote with its items and their products
func (r *GormQuoteRepository) FindByIDForScope(ctx context.Context, scopeKey string, id uuid.UUID) (*procurement.Quote, error) {
	var model models.QuoteModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC, id ASC")
		}).
		Preload("Items.Product").
		Scopes(ScopeKeyScope(scopeKey)).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("quote %s not found", id))
		}
		return nil, fmt.Errorf("load quote %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// Ensure GormQuoteRepository implements the interface
var _ procurement.QuoteReader = (*GormQuoteRepository)(nil)
