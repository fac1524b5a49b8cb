package persistence

import (
	"context"
	"fmt"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/bioinsight/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerEntryRepository implements ledger.EntryRepository using GORM.
// It only ever inserts and reads rows.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// ExistsForQuote reports whether any entry was already created for the quote
func (r *GormLedgerEntryRepository) ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("quote_id = ?", quoteID).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return false, fmt.Errorf("check ledger entries for quote %s: %w", quoteID, err)
	}
	return len(ids) > 0, nil
}

// CreateBatch inserts all entries in one statement. Rows that collide on
// (quote_id, source_line_item_id) are skipped and not counted.
func (r *GormLedgerEntryRepository) CreateBatch(ctx context.Context, entries []*ledger.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	rows := make([]*models.LedgerEntryModel, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.LedgerEntryModelFromDomain(e))
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "quote_id"}, {Name: "source_line_item_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if result.Error != nil {
		return 0, fmt.Errorf("insert ledger entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// StreamRange calls fn for every entry of the scope purchased within r
func (r *GormLedgerEntryRepository) StreamRange(ctx context.Context, scopeKey string, dr ledger.DateRange, fn func(*ledger.Entry) error) error {
	db := r.db.WithContext(ctx)
	rows, err := db.Model(&models.LedgerEntryModel{}).
		Scopes(ScopeKeyScope(scopeKey)).
		Where("purchased_at >= ? AND purchased_at < ?", dr.From, dr.To).
		Rows()
	if err != nil {
		return fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.LedgerEntryModel
		if err := db.ScanRows(rows, &m); err != nil {
			return fmt.Errorf("scan ledger entry: %w", err)
		}
		if err := fn(m.ToDomain()); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate ledger entries: %w", err)
	}
	return nil
}

// FindByScope returns a page of entries for the scope and the total count
func (r *GormLedgerEntryRepository) FindByScope(ctx context.Context, scopeKey string, filter shared.Filter) ([]ledger.Entry, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).Scopes(ScopeKeyScope(scopeKey))
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	orderBy := ValidateSortField(filter.OrderBy, LedgerEntrySortFields, "purchased_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var rows []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Scopes(ScopeKeyScope(scopeKey)).
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}

	entries := make([]ledger.Entry, 0, len(rows))
	for i := range rows {
		entries = append(entries, *rows[i].ToDomain())
	}
	return entries, total, nil
}

// CountForQuote counts entries created for a quote
func (r *GormLedgerEntryRepository) CountForQuote(ctx context.Context, quoteID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("quote_id = ?", quoteID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count ledger entries for quote %s: %w", quoteID, err)
	}
	return count, nil
}

// Ensure GormLedgerEntryRepository implements the interface
var _ ledger.EntryRepository = (*GormLedgerEntryRepository)(nil)
