package cartera

import (
	"testing"

	"github.com/etnz/cartera/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ARS is a helper for test to create local money from const
func ARS(v float64) Money { return M(v, "ARS") }

// USDm is a helper for test to create usd money from const
func USDm(v float64) Money { return M(v, USD) }

// pct is a helper to get a *Percent from a const.
func pct(v float64) *Percent { p := Percent(v); return &p }

func buy(on string, ticker string, qty, price float64) Trade {
	return NewTrade(date.MustParse(on), Buy, ticker, Q(qty), ARS(price))
}

func sell(on string, ticker string, qty, price float64) Trade {
	return NewTrade(date.MustParse(on), Sell, ticker, Q(qty), ARS(price))
}

// rates builds an exchange rate series from date/rate pairs.
func rates(pairs ...any) *ExchangeRates {
	x := NewExchangeRates()
	for i := 0; i+1 < len(pairs); i += 2 {
		x.Append(date.MustParse(pairs[i].(string)), R(pairs[i+1].(float64)))
	}
	return x
}

// assertDecimal checks that got is within tolerance of want.
func assertDecimal(t *testing.T, want float64, got decimal.Decimal, tolerance float64) {
	t.Helper()
	diff := got.Sub(decimal.NewFromFloat(want)).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.NewFromFloat(tolerance)), "got %s want %v", got, want)
}

// find returns the position for ticker, or nil.
func find(res Result, ticker string) *Position {
	for i := range res.Positions {
		if res.Positions[i].Ticker == ticker {
			return &res.Positions[i]
		}
	}
	return nil
}
