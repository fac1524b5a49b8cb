package procurement

import "github.com/google/uuid"

// Product is the catalog-side reference a line item may point at.
// It is owned by the catalog and never mutated by the ledger.
type Product struct {
	ID            uuid.UUID
	Name          string
	CatalogNumber string
	Brand         string
	Unit          string
	Category      *Category
}
