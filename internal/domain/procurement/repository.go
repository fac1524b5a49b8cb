package procurement

import (
	"context"

	"github.com/google/uuid"
)

// QuoteReader gives the ledger read-only access to quotes owned by the
// quote-authoring subsystem.
type QuoteReader interface {
	// FindByIDForScope loads a quote with its line items and their products.
	// Returns shared.ErrNotFound when no quote with id exists in the scope.
	FindByIDForScope(ctx context.Context, scopeKey string, id uuid.UUID) (*Quote, error)
}

// VendorOfferReader gives read-only access to catalog reference prices
type VendorOfferReader interface {
	// FindByProductIDs returns the offers of each product, keyed by product id
	FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]VendorOffer, error)
}
