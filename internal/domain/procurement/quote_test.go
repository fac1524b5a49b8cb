package procurement

import (
	"errors"
	"testing"

	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoryPtr(c Category) *Category { return &c }

func TestQuoteStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  QuoteStatus
		isValid bool
	}{
		{QuoteStatusDraft, true},
		{QuoteStatusSent, true},
		{QuoteStatusAccepted, true},
		{QuoteStatusPurchased, true},
		{QuoteStatusCancelled, true},
		{QuoteStatus("INVALID"), false},
		{QuoteStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestQuote_EnsureFinalizable(t *testing.T) {
	t.Run("no items is not found", func(t *testing.T) {
		q := &Quote{BaseEntity: shared.NewBaseEntity(), Status: QuoteStatusAccepted}
		err := q.EnsureFinalizable()
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("cancelled is invalid state", func(t *testing.T) {
		q := &Quote{BaseEntity: shared.NewBaseEntity(), Status: QuoteStatusCancelled, Items: []LineItem{{Quantity: 1}}}
		err := q.EnsureFinalizable()
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("accepted with items is fine", func(t *testing.T) {
		q := &Quote{BaseEntity: shared.NewBaseEntity(), Status: QuoteStatusAccepted, Items: []LineItem{{Quantity: 1}}}
		assert.NoError(t, q.EnsureFinalizable())
	})
}

func TestQuote_ProductIDs(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	q := &Quote{Items: []LineItem{
		{ProductID: &p1},
		{ProductID: nil},
		{ProductID: &p2},
		{ProductID: &p1},
	}}
	assert.Equal(t, []uuid.UUID{p1, p2}, q.ProductIDs())
}

func TestLineItem_Fallbacks(t *testing.T) {
	t.Run("explicit fields win", func(t *testing.T) {
		li := LineItem{
			ItemName:      "Taq Polymerase",
			CatalogNumber: "M0273S",
			Unit:          "ea",
			Snapshot:      &ItemSnapshot{Name: "snap", CatalogNumber: "snap-cat", Unit: "box"},
			Product:       &Product{Name: "prod", CatalogNumber: "prod-cat", Unit: "kit"},
		}
		assert.Equal(t, "Taq Polymerase", li.DisplayName())
		assert.Equal(t, "M0273S", li.ResolvedCatalogNumber())
		assert.Equal(t, "ea", li.ResolvedUnit())
	})

	t.Run("snapshot before product", func(t *testing.T) {
		li := LineItem{
			Snapshot: &ItemSnapshot{Name: "snap", Unit: "box"},
			Product:  &Product{Name: "prod", CatalogNumber: "prod-cat", Unit: "kit"},
		}
		assert.Equal(t, "snap", li.DisplayName())
		assert.Equal(t, "prod-cat", li.ResolvedCatalogNumber())
		assert.Equal(t, "box", li.ResolvedUnit())
	})

	t.Run("category from product then snapshot", func(t *testing.T) {
		li := LineItem{
			Snapshot: &ItemSnapshot{Category: categoryPtr(CategoryTool)},
			Product:  &Product{Category: categoryPtr(CategoryReagent)},
		}
		require.NotNil(t, li.ResolvedCategory())
		assert.Equal(t, CategoryReagent, *li.ResolvedCategory())

		li.Product = nil
		assert.Equal(t, CategoryTool, *li.ResolvedCategory())

		li.Snapshot = nil
		assert.Nil(t, li.ResolvedCategory())
	})
}

func TestParseItemSnapshot(t *testing.T) {
	s, err := ParseItemSnapshot([]byte(`{"name":"Pipette","category":"TOOL"}`))
	require.NoError(t, err)
	assert.Equal(t, "Pipette", s.Name)
	assert.Equal(t, CategoryTool, *s.Category)

	s, err = ParseItemSnapshot([]byte(`{"category":"SNACKS"}`))
	require.NoError(t, err)
	assert.Nil(t, s.Category)

	s, err = ParseItemSnapshot(nil)
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = ParseItemSnapshot([]byte(`{`))
	assert.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("reagent")
	require.NoError(t, err)
	assert.Equal(t, CategoryReagent, *c)

	c, err = ParseCategory("")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = ParseCategory("food")
	assert.Error(t, err)
}
