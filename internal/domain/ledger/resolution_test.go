package ledger

import (
	"testing"

	"github.com/bioinsight/backend/internal/domain/procurement"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestResolve(t *testing.T) {
	offer := &procurement.VendorOffer{VendorName: "Thermo", Price: dec("500")}

	tests := []struct {
		name       string
		item       procurement.LineItem
		offer      *procurement.VendorOffer
		cur        valueobject.Currency
		wantUnit   *decimal.Decimal
		wantAmount string
		wantVendor string
	}{
		{
			name:       "explicit unit price and line total",
			item:       procurement.LineItem{Quantity: 2, UnitPrice: dec("1000"), LineTotal: dec("2000")},
			offer:      offer,
			cur:        valueobject.KRW,
			wantUnit:   dec("1000"),
			wantAmount: "2000",
			wantVendor: "Thermo",
		},
		{
			name:       "line total wins over unit price times quantity",
			item:       procurement.LineItem{Quantity: 3, UnitPrice: dec("1000"), LineTotal: dec("2500")},
			cur:        valueobject.KRW,
			wantUnit:   dec("1000"),
			wantAmount: "2500",
			wantVendor: UnknownVendor,
		},
		{
			name:       "falls back to offer price",
			item:       procurement.LineItem{Quantity: 3},
			offer:      offer,
			cur:        valueobject.KRW,
			wantUnit:   dec("500"),
			wantAmount: "1500",
			wantVendor: "Thermo",
		},
		{
			name:       "offer price rounded to won",
			item:       procurement.LineItem{Quantity: 2},
			offer:      &procurement.VendorOffer{VendorName: "Sigma", Price: dec("333.5")},
			cur:        valueobject.KRW,
			wantUnit:   dec("334"),
			wantAmount: "668",
			wantVendor: "Sigma",
		},
		{
			name:       "offer price rounded to cents",
			item:       procurement.LineItem{Quantity: 2},
			offer:      &procurement.VendorOffer{VendorName: "Sigma", Price: dec("10.005")},
			cur:        valueobject.USD,
			wantUnit:   dec("10.01"),
			wantAmount: "20.02",
			wantVendor: "Sigma",
		},
		{
			name:       "explicit unit price is not rounded",
			item:       procurement.LineItem{Quantity: 1, UnitPrice: dec("99.9")},
			offer:      offer,
			cur:        valueobject.KRW,
			wantUnit:   dec("99.9"),
			wantAmount: "99.9",
			wantVendor: "Thermo",
		},
		{
			name:       "line total without any unit price",
			item:       procurement.LineItem{Quantity: 4, LineTotal: dec("800")},
			cur:        valueobject.KRW,
			wantUnit:   nil,
			wantAmount: "800",
			wantVendor: UnknownVendor,
		},
		{
			name:       "nothing resolvable",
			item:       procurement.LineItem{Quantity: 5},
			cur:        valueobject.KRW,
			wantUnit:   nil,
			wantAmount: "0",
			wantVendor: UnknownVendor,
		},
		{
			name:       "unpriced offer still names vendor",
			item:       procurement.LineItem{Quantity: 5},
			offer:      &procurement.VendorOffer{VendorName: "Merck"},
			cur:        valueobject.KRW,
			wantUnit:   nil,
			wantAmount: "0",
			wantVendor: "Merck",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.item
			got := Resolve(&item, tt.offer, tt.cur)
			if tt.wantUnit == nil {
				assert.Nil(t, got.UnitPrice)
			} else {
				require.NotNil(t, got.UnitPrice)
				assert.True(t, tt.wantUnit.Equal(*got.UnitPrice), "unit price %s", got.UnitPrice)
			}
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(got.Amount), "amount %s", got.Amount)
			assert.Equal(t, tt.wantVendor, got.VendorName)
		})
	}
}

func TestResolve_DoesNotAliasInput(t *testing.T) {
	item := procurement.LineItem{Quantity: 1, UnitPrice: dec("10")}
	got := Resolve(&item, nil, valueobject.KRW)
	*got.UnitPrice = decimal.NewFromInt(99)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(10)))
}
