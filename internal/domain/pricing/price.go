// internal/domain/pricing/price.go
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is a monetary amount as received from the commerce API. The API is
// not consistent about encoding: some endpoints return prices as JSON
// numbers, others as string-encoded decimals. Price accepts both on decode
// and always marshals back as a decimal string, so every render and payload
// site works with one normalized representation.
//
// The JSON, database and SQL behaviour all come from the embedded
// decimal.Decimal.
type Price struct {
	decimal.Decimal
}

// Zero returns the zero price.
func Zero() Price {
	return Price{decimal.Zero}
}

// FromInt creates a price from a whole amount.
func FromInt(amount int64) Price {
	return Price{decimal.NewFromInt(amount)}
}

// Parse parses a decimal string into a price.
func Parse(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero(), fmt.Errorf("invalid price %q: %w", s, err)
	}
	return Price{d}, nil
}

// MustParse is Parse for test fixtures and constants; it panics on bad input.
func MustParse(s string) Price {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Add returns p + other.
func (p Price) Add(other Price) Price {
	return Price{p.Decimal.Add(other.Decimal)}
}

// MulQuantity returns the line total for quantity units at this price.
func (p Price) MulQuantity(quantity int) Price {
	return Price{p.Decimal.Mul(decimal.NewFromInt(int64(quantity)))}
}

// Equal reports whether two prices represent the same amount.
func (p Price) Equal(other Price) bool {
	return p.Decimal.Equal(other.Decimal)
}
