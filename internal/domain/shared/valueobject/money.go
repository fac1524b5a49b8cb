package valueobject

import (
	"database/sql/driver"
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Currency is one of the ISO 4217 codes the ledger accepts
type Currency string

const (
	KRW Currency = "KRW" // South Korean Won (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
	JPY Currency = "JPY" // Japanese Yen
	CNY Currency = "CNY" // Chinese Yuan
)

// DefaultCurrency is the ledger currency of the reference deployment
const DefaultCurrency = KRW

var supportedCurrencies = map[Currency]struct{}{
	KRW: {},
	USD: {},
	EUR: {},
	JPY: {},
	CNY: {},
}

// ParseCurrency converts a code into a supported Currency.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := supportedCurrencies[c]; !ok {
		return "", fmt.Errorf("unsupported currency: %q", code)
	}
	return c, nil
}

// IsValid reports whether the currency is supported
func (c Currency) IsValid() bool {
	_, ok := supportedCurrencies[c]
	return ok
}

// String returns the ISO code
func (c Currency) String() string {
	return string(c)
}

// OrDefault returns c when valid, otherwise fallback
func (c Currency) OrDefault(fallback Currency) Currency {
	if c.IsValid() {
		return c
	}
	return fallback
}

// MinorUnitScale returns the number of decimal places of the currency's
// minor unit according to ISO 4217 (0 for KRW and JPY, 2 for USD).
func (c Currency) MinorUnitScale() int32 {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// RoundToMinorUnit rounds d half away from zero to the currency's minor-unit precision
func (c Currency) RoundToMinorUnit(d decimal.Decimal) decimal.Decimal {
	return d.Round(c.MinorUnitScale())
}

// Format renders an amount for display, e.g. "₩1,500" or "$12.30"
func (c Currency) Format(d decimal.Decimal) string {
	scale := c.MinorUnitScale()
	minor := c.RoundToMinorUnit(d).Shift(scale).IntPart()
	return gomoney.New(minor, string(c)).Display()
}

// Value implements driver.Valuer
func (c Currency) Value() (driver.Value, error) {
	return string(c), nil
}

// Scan implements sql.Scanner
func (c *Currency) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*c = ""
	case string:
		*c = Currency(v)
	case []byte:
		*c = Currency(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Currency", value)
	}
	return nil
}
