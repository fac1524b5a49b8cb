package ledger

import (
	"github.com/bioinsight/backend/internal/domain/procurement"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// UnknownVendor is the vendor name used when no vendor offer matches a line item
const UnknownVendor = "Unknown Vendor"

// Resolution is the committed price data for one line item
type Resolution struct {
	UnitPrice  *decimal.Decimal
	Amount     decimal.Decimal
	VendorName string
}

// Resolve applies the price precedence rules to a line item.
//
// Unit price: the explicit unit price, else the offer price rounded to the
// currency's minor unit, else nil. Amount: the explicit line total, else
// unit price times quantity, else zero. Vendor: the offer's vendor, else
// UnknownVendor.
func Resolve(item *procurement.LineItem, offer *procurement.VendorOffer, cur valueobject.Currency) Resolution {
	res := Resolution{VendorName: UnknownVendor, Amount: decimal.Zero}

	if offer != nil && offer.VendorName != "" {
		res.VendorName = offer.VendorName
	}

	switch {
	case item.UnitPrice != nil:
		p := *item.UnitPrice
		res.UnitPrice = &p
	case offer != nil && offer.Price != nil:
		p := cur.RoundToMinorUnit(*offer.Price)
		res.UnitPrice = &p
	}

	switch {
	case item.LineTotal != nil:
		res.Amount = *item.LineTotal
	case res.UnitPrice != nil:
		res.Amount = res.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}

	return res
}
