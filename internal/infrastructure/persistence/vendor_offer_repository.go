package persistence

import (
	"context"
	"fmt"

	"github.com/bioinsight/backend/internal/domain/procurement"
	"github.com/bioinsight/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVendorOfferRepository implements procurement.VendorOfferReader using GORM
type GormVendorOfferRepository struct {
	db *gorm.DB
}

// NewGormVendorOfferRepository creates a new GormVendorOfferRepository
func NewGormVendorOfferRepository(db *gorm.DB) *GormVendorOfferRepository {
	return &GormVendorOfferRepository{db: db}
}

// FindByProductIDs returns the offers of each product, keyed by product id
func (r *GormVendorOfferRepository) FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]procurement.VendorOffer, error) {
	result := make(map[uuid.UUID][]procurement.VendorOffer, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	var rows []models.VendorOfferModel
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load vendor offers: %w", err)
	}

	for i := range rows {
		offer := rows[i].ToDomain()
		result[offer.ProductID] = append(result[offer.ProductID], offer)
	}
	return result, nil
}

// Ensure GormVendorOfferRepository implements the interface
var _ procurement.VendorOfferReader = (*GormVendorOfferRepository)(nil)
