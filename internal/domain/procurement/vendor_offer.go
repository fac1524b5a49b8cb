package procurement

import (
	"time"

	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorOffer is a catalog-side reference price for a product from a vendor
type VendorOffer struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	VendorName string
	Price      *decimal.Decimal
	Currency   valueobject.Currency
	UpdatedAt  time.Time
}

// SelectBestOffer picks the offer used as the fallback price source for a product.
// Priced offers win over unpriced ones; among priced offers the lowest price
// wins, then the most recently updated, then the vendor name in ascending order.
// Without any priced offer the most recently updated offer is returned so its
// vendor label can still be used. Returns nil for an empty slice.
func SelectBestOffer(offers []VendorOffer) *VendorOffer {
	var best *VendorOffer
	for i := range offers {
		o := &offers[i]
		if best == nil || betterOffer(o, best) {
			best = o
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

func betterOffer(a, b *VendorOffer) bool {
	switch {
	case a.Price != nil && b.Price == nil:
		return true
	case a.Price == nil && b.Price != nil:
		return false
	case a.Price != nil && b.Price != nil && !a.Price.Equal(*b.Price):
		return a.Price.LessThan(*b.Price)
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.VendorName < b.VendorName
}
