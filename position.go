package cartera

// Position is the valuation of one open holding.
//
// Positions are projections: they are recomputed from the trades every time
// and carry no identity of their own.
type Position struct {
	Ticker string     `json:"ticker"`
	Class  AssetClass `json:"class,omitempty"`

	Quantity     Quantity `json:"quantity"`
	CostLocal    Money    `json:"costLocal"`
	CostUSD      Money    `json:"costUSD"`
	AvgCostLocal Money    `json:"avgCostLocal"`
	AvgCostUSD   Money    `json:"avgCostUSD"`

	CurrentPrice      Money    `json:"currentPrice"`
	DailyChange       *Percent `json:"dailyChange,omitempty"`
	CurrentValueLocal Money    `json:"currentValueLocal"`

	UnrealizedPnLLocal Money   `json:"unrealizedPnLLocal"`
	UnrealizedPnLPct   Percent `json:"unrealizedPnLPct"`
	DailyPnLLocal      Money   `json:"dailyPnLLocal"`
	RealizedPnLLocal   Money   `json:"realizedPnLLocal"`

	// WeightedAvgRate is the exchange rate implied by the cost basis.
	WeightedAvgRate Rate `json:"weightedAvgRate"`
	// FXAttributedPnL is the part of the unrealized P&L due to the exchange rate move.
	FXAttributedPnL Money `json:"fxAttributedPnL"`
	// PriceAttributedPnL is the remainder, due to the price move.
	PriceAttributedPnL Money `json:"priceAttributedPnL"`

	CurrentValueUSD  Money `json:"currentValueUSD"`
	UnrealizedPnLUSD Money `json:"unrealizedPnLUSD"`
	DailyPnLUSD      Money `json:"dailyPnLUSD"`

	// ResultUSD is the value at the current rate against the USD cost at
	// historical rates. It sums to Totals.ResultUSD.
	ResultUSD    Money   `json:"resultUSD"`
	ResultUSDPct Percent `json:"resultUSDPct"`
}

// Totals aggregates all positions. Percentages are computed from the summed
// amounts, never averaged.
type Totals struct {
	Invested    Money `json:"invested"`
	InvestedUSD Money `json:"investedUSD"`
	Valuation   Money `json:"valuation"`
	// ValuationUSD is the valuation at the current rate.
	ValuationUSD Money `json:"valuationUSD"`

	// The daily percentages are relative to the amount invested.
	DailyPnL       Money   `json:"dailyPnL"`
	DailyPnLUSD    Money   `json:"dailyPnLUSD"`
	DailyPnLPct    Percent `json:"dailyPnLPct"`
	DailyPnLUSDPct Percent `json:"dailyPnLUSDPct"`

	UnrealizedPnL    Money   `json:"unrealizedPnL"`
	UnrealizedPnLUSD Money   `json:"unrealizedPnLUSD"`
	UnrealizedPnLPct Percent `json:"unrealizedPnLPct"`

	// ResultUSD is the valuation in USD against the USD invested at historical rates.
	ResultUSD    Money   `json:"resultUSD"`
	ResultUSDPct Percent `json:"resultUSDPct"`

	FXAttributedPnL    Money `json:"fxAttributedPnL"`
	PriceAttributedPnL Money `json:"priceAttributedPnL"`

	// RealizedPnL includes the positions that have been closed.
	RealizedPnL Money `json:"realizedPnL"`
}

// newTotals returns zeroed totals in the right currencies.
func newTotals(local string) Totals {
	return Totals{
		Invested:           M(0, local),
		InvestedUSD:        M(0, USD),
		Valuation:          M(0, local),
		ValuationUSD:       M(0, USD),
		DailyPnL:           M(0, local),
		DailyPnLUSD:        M(0, USD),
		UnrealizedPnL:      M(0, local),
		UnrealizedPnLUSD:   M(0, USD),
		ResultUSD:          M(0, USD),
		FXAttributedPnL:    M(0, local),
		PriceAttributedPnL: M(0, local),
		RealizedPnL:        M(0, local),
	}
}

// add accumulates a position into the totals.
func (t *Totals) add(p Position) {
	t.Invested = t.Invested.Add(p.CostLocal)
	t.InvestedUSD = t.InvestedUSD.Add(p.CostUSD)
	t.Valuation = t.Valuation.Add(p.CurrentValueLocal)
	t.ValuationUSD = t.ValuationUSD.Add(p.CurrentValueUSD)
	t.DailyPnL = t.DailyPnL.Add(p.DailyPnLLocal)
	t.DailyPnLUSD = t.DailyPnLUSD.Add(p.DailyPnLUSD)
	t.UnrealizedPnL = t.UnrealizedPnL.Add(p.UnrealizedPnLLocal)
	t.UnrealizedPnLUSD = t.UnrealizedPnLUSD.Add(p.UnrealizedPnLUSD)
	t.ResultUSD = t.ResultUSD.Add(p.ResultUSD)
	t.FXAttributedPnL = t.FXAttributedPnL.Add(p.FXAttributedPnL)
	t.PriceAttributedPnL = t.PriceAttributedPnL.Add(p.PriceAttributedPnL)
}

// ratios computes the percentages once all positions have been added.
func (t *Totals) ratios() {
	t.UnrealizedPnLPct = percentOf(t.UnrealizedPnL, t.Invested)
	t.DailyPnLPct = percentOf(t.DailyPnL, t.Invested)
	t.DailyPnLUSDPct = percentOf(t.DailyPnLUSD, t.InvestedUSD)
	t.ResultUSDPct = percentOf(t.ResultUSD, t.InvestedUSD)
}
