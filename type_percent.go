package cartera

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Percent float64

// percentOf returns part/base*100, or 0 when base is zero.
func percentOf(part, base Money) Percent {
	return Percent(part.Ratio(base).Mul(decimal.NewFromInt(100)).InexactFloat64())
}

// Fraction returns p as a ratio (5% is 0.05).
func (p Percent) Fraction() decimal.Decimal {
	return decimal.NewFromFloat(float64(p)).Div(decimal.NewFromInt(100))
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}
