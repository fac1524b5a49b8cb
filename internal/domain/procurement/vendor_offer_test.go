package procurement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestSelectBestOffer(t *testing.T) {
	productID := uuid.New()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty returns nil", func(t *testing.T) {
		assert.Nil(t, SelectBestOffer(nil))
	})

	t.Run("lowest price wins", func(t *testing.T) {
		best := SelectBestOffer([]VendorOffer{
			{ProductID: productID, VendorName: "Sigma", Price: price(700), UpdatedAt: now},
			{ProductID: productID, VendorName: "Thermo", Price: price(500), UpdatedAt: now.Add(-time.Hour)},
			{ProductID: productID, VendorName: "Merck", Price: nil, UpdatedAt: now.Add(time.Hour)},
		})
		require.NotNil(t, best)
		assert.Equal(t, "Thermo", best.VendorName)
	})

	t.Run("equal price prefers most recent", func(t *testing.T) {
		best := SelectBestOffer([]VendorOffer{
			{VendorName: "Alpha", Price: price(500), UpdatedAt: now.Add(-time.Hour)},
			{VendorName: "Beta", Price: price(500), UpdatedAt: now},
		})
		assert.Equal(t, "Beta", best.VendorName)
	})

	t.Run("full tie prefers vendor name ascending", func(t *testing.T) {
		best := SelectBestOffer([]VendorOffer{
			{VendorName: "Zeta", Price: price(500), UpdatedAt: now},
			{VendorName: "Alpha", Price: price(500), UpdatedAt: now},
		})
		assert.Equal(t, "Alpha", best.VendorName)
	})

	t.Run("only unpriced offers keeps most recent for vendor label", func(t *testing.T) {
		best := SelectBestOffer([]VendorOffer{
			{VendorName: "Old", UpdatedAt: now.Add(-time.Hour)},
			{VendorName: "New", UpdatedAt: now},
		})
		require.NotNil(t, best)
		assert.Equal(t, "New", best.VendorName)
		assert.Nil(t, best.Price)
	})

	t.Run("returns a copy", func(t *testing.T) {
		offers := []VendorOffer{{VendorName: "Alpha", Price: price(1)}}
		best := SelectBestOffer(offers)
		best.VendorName = "changed"
		assert.Equal(t, "Alpha", offers[0].VendorName)
	})
}
