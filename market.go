package cartera

import (
	"github.com/etnz/cartera/date"
	"github.com/shopspring/decimal"
)

// AssetClass is the category a ticker belongs to (CEDEAR, ACCION, BONO, FCI...).
type AssetClass string

// Quote is the latest known market data for a ticker.
//
// A zero Price means there is no data for the ticker.
type Quote struct {
	Price Money
	// DailyChange is the change against the previous close, nil if unknown.
	DailyChange *Percent
	Class       AssetClass
}

// Quotes maps a normalized ticker to its latest quote.
type Quotes map[string]Quote

// ExchangeRates is the historical series of local currency units per USD.
type ExchangeRates struct {
	history date.History[decimal.Decimal]
}

// NewExchangeRates returns an empty series.
func NewExchangeRates() *ExchangeRates { return &ExchangeRates{} }

// Append records the rate for a day, replacing any previous value for that day.
func (x *ExchangeRates) Append(on date.Date, r Rate) *ExchangeRates {
	x.history.Append(on, r.value)
	return x
}

// Len returns the number of days in the series. A nil series is empty.
func (x *ExchangeRates) Len() int {
	if x == nil {
		return 0
	}
	return x.history.Len()
}

// AsOf returns the rate on a day, or the closest one before it.
func (x *ExchangeRates) AsOf(on date.Date) (Rate, bool) {
	if x == nil {
		return Rate{}, false
	}
	v, ok := x.history.ValueAsOf(on)
	return Rate{value: v}, ok
}

// Latest returns the most recent day and rate of the series.
func (x *ExchangeRates) Latest() (date.Date, Rate) {
	if x == nil {
		return date.Date{}, Rate{}
	}
	day, v := x.history.Latest()
	return day, Rate{value: v}
}
