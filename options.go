package cartera

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultLocalCurrency is the currency trades and quotes are expressed in unless configured otherwise.
const DefaultLocalCurrency = "ARS"

// Options holds the valuation settings. They are always passed explicitly,
// the engine reads no ambient state.
type Options struct {
	// LocalCurrency is the ISO code of trade prices and quotes.
	LocalCurrency string
	// Epsilon is the quantity under which a holding is considered closed.
	Epsilon Quantity
	// BondClasses lists the asset classes quoted as a percentage of face value.
	BondClasses []AssetClass
	// BondFractionThreshold is the quote under which a bond price is assumed to
	// be a fraction of face value, and is scaled by 100.
	BondFractionThreshold decimal.Decimal
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		LocalCurrency:         DefaultLocalCurrency,
		Epsilon:               Q(decimal.New(1, -4)),
		BondClasses:           []AssetClass{"BONO", "ON", "LETRA"},
		BondFractionThreshold: decimal.NewFromInt(2),
	}
}

// withDefaults fills the zero fields of o with the default values.
// A zero Epsilon or threshold means the default one.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.LocalCurrency == "" {
		o.LocalCurrency = def.LocalCurrency
	}
	if !o.Epsilon.IsPositive() {
		o.Epsilon = def.Epsilon
	}
	if o.BondClasses == nil {
		o.BondClasses = def.BondClasses
	}
	if !o.BondFractionThreshold.IsPositive() {
		o.BondFractionThreshold = def.BondFractionThreshold
	}
	return o
}

func (o Options) isBond(c AssetClass) bool {
	for _, b := range o.BondClasses {
		if strings.EqualFold(string(b), string(c)) {
			return true
		}
	}
	return false
}

// quotedPrice returns the unit price to value a holding with.
//
// Bonds are traded as a percentage of face value. Some feeds publish them as a
// fraction instead (0.68 rather than 68), those quotes are scaled by 100.
func (o Options) quotedPrice(q Quote) decimal.Decimal {
	p := q.Price.Decimal()
	if o.isBond(q.Class) && p.IsPositive() && p.LessThan(o.BondFractionThreshold) {
		return p.Mul(decimal.NewFromInt(100))
	}
	return p
}
