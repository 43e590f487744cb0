package cartera

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// USD is the currency code of the reference currency.
const USD = "USD"

// Rate is an exchange rate expressed as local currency units per 1 USD.
type Rate struct {
	value decimal.Decimal
}

func R[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Rate {
	return Rate{value: newDecimal(value)}
}

// ParseRate parses a rate, accepting a comma as decimal separator.
func ParseRate(s string) (Rate, error) {
	v, err := parseNumber(s)
	if err != nil {
		return Rate{}, fmt.Errorf("invalid rate %q: %w", s, err)
	}
	return Rate{value: v}, nil
}

// IsValid reports whether the rate can be used to convert amounts.
func (r Rate) IsValid() bool            { return r.value.IsPositive() }
func (r Rate) Decimal() decimal.Decimal { return r.value }
func (r Rate) Equal(s Rate) bool        { return r.value.Equal(s.value) }
func (r Rate) String() string           { return r.value.StringFixed(4) }
func (r Rate) InexactFloat64() float64  { return r.value.InexactFloat64() }

// ToUSD converts a local amount into USD. An invalid rate converts to zero.
func (r Rate) ToUSD(m Money) Money {
	if !r.IsValid() {
		return M(0, USD)
	}
	return Money{value: m.value.Div(r.value), cur: USD}
}

// ToLocal converts a USD amount into the given local currency.
func (r Rate) ToLocal(m Money, local string) Money {
	return Money{value: m.value.Mul(r.value), cur: local}
}

// impliedRate returns the rate embedded in a pair of amounts of the same value,
// or the zero Rate if usd is zero.
func impliedRate(local, usd Money) Rate {
	if usd.IsZero() {
		return Rate{}
	}
	return Rate{value: local.value.Div(usd.value)}
}

func (r Rate) MarshalJSON() ([]byte, error) {
	return r.value.MarshalJSON()
}

func (r *Rate) UnmarshalJSON(decimalBytes []byte) error {
	return r.value.UnmarshalJSON(decimalBytes)
}
