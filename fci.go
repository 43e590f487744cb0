package cartera

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/etnz/cartera/date"
	"github.com/shopspring/decimal"
)

// FundPrices holds the published unit value (VCP) history of mutual funds.
type FundPrices struct {
	funds map[string]*date.History[decimal.Decimal]
}

// NewFundPrices returns an empty set of series.
func NewFundPrices() *FundPrices {
	return &FundPrices{funds: make(map[string]*date.History[decimal.Decimal])}
}

// Append records the unit value of fund on a day, replacing any previous value
// for that day.
func (p *FundPrices) Append(fund string, on date.Date, price Money) *FundPrices {
	fund = NormalizeTicker(fund)
	h, ok := p.funds[fund]
	if !ok {
		h = new(date.History[decimal.Decimal])
		p.funds[fund] = h
	}
	h.Append(on, price.value)
	return p
}

// Len returns the number of funds with a series. A nil set is empty.
func (p *FundPrices) Len() int {
	if p == nil {
		return 0
	}
	return len(p.funds)
}

// asOf returns the last unit value of fund on or before day, and the one
// published just before it. Either is zero when unknown.
func (p *FundPrices) asOf(fund string, day date.Date) (on date.Date, last, previous decimal.Decimal) {
	if p == nil {
		return
	}
	h, ok := p.funds[fund]
	if !ok {
		return
	}
	on, last, ok = h.PointAsOf(day)
	if !ok {
		return
	}
	// Weekends and holidays have no value, the previous one may be days before.
	_, previous, _ = h.PointAsOf(on.Add(-1))
	return on, last, previous
}

// Lot is one subscription to a fund. Its units keep the unit value of the day
// they were bought until redeemed.
type Lot struct {
	Fund       string    `json:"fund"`
	Date       date.Date `json:"date"`
	Units      Quantity  `json:"units"`
	EntryPrice Money     `json:"entryPrice"`
}

// Invested is the amount invested in what remains of the lot.
func (l Lot) Invested() Money { return l.EntryPrice.Mul(l.Units) }

// LotValuation is a lot valued at the latest unit value.
type LotValuation struct {
	Lot
	Capital   Money `json:"capital"`
	Valuation Money `json:"valuation"`
	PnL       Money `json:"pnl"`
	// DailyPnL is units × (last unit value − previous unit value).
	DailyPnL Money `json:"dailyPnL"`
}

// FundPosition aggregates the open lots of a fund. The lots are what the
// P&L is computed on, the aggregate is for display.
type FundPosition struct {
	Fund string         `json:"fund"`
	Lots []LotValuation `json:"lots"`

	Units   Quantity `json:"units"`
	Capital Money    `json:"capital"`
	// AvgEntryPrice is the unit value averaged over the open lots.
	AvgEntryPrice Money     `json:"avgEntryPrice"`
	Price         Money     `json:"price"`
	PriceDate     date.Date `json:"priceDate,omitzero"`
	PreviousPrice Money     `json:"previousPrice"`

	Valuation Money   `json:"valuation"`
	PnL       Money   `json:"pnl"`
	PnLPct    Percent `json:"pnlPct"`
	DailyPnL  Money   `json:"dailyPnL"`
	Realized  Money   `json:"realized"`

	// CapitalUSD costs each lot at the rate of its subscription day.
	CapitalUSD   Money   `json:"capitalUSD"`
	ValuationUSD Money   `json:"valuationUSD"`
	PnLUSD       Money   `json:"pnlUSD"`
	PnLUSDPct    Percent `json:"pnlUSDPct"`
	DailyPnLUSD  Money   `json:"dailyPnLUSD"`
}

// FundTotals sums the fund positions.
type FundTotals struct {
	Invested     Money   `json:"invested"`
	Valuation    Money   `json:"valuation"`
	PnL          Money   `json:"pnl"`
	PnLPct       Percent `json:"pnlPct"`
	DailyPnL     Money   `json:"dailyPnL"`
	Realized     Money   `json:"realized"`
	InvestedUSD  Money   `json:"investedUSD"`
	ValuationUSD Money   `json:"valuationUSD"`
	PnLUSD       Money   `json:"pnlUSD"`
	PnLUSDPct    Percent `json:"pnlUSDPct"`
	DailyPnLUSD  Money   `json:"dailyPnLUSD"`
}

// FundResult is the outcome of ComputeFunds.
type FundResult struct {
	// Funds are the open positions, largest valuation first.
	Funds     []FundPosition `json:"funds"`
	Totals    FundTotals     `json:"totals"`
	Anomalies []Anomaly      `json:"anomalies,omitempty"`
}

// fundBook is the running state of one fund while folding over movements.
type fundBook struct {
	fund     string
	lots     []Lot
	realized decimal.Decimal
}

// replayFunds replays fund movements in date order. Each subscription (a buy)
// opens a lot at its unit value, redemptions (sells) consume the oldest lots
// first.
func replayFunds(movements []Trade, opts Options) (map[string]*fundBook, []string, []Anomaly) {
	books := make(map[string]*fundBook)
	var order []string
	var anomalies []Anomaly

	sorted := slices.Clone(movements)
	slices.SortStableFunc(sorted, func(a, b Trade) int { return a.Date.Compare(b.Date) })
	for _, tx := range sorted {
		b, ok := books[tx.Ticker]
		if !ok {
			b = &fundBook{fund: tx.Ticker}
			books[tx.Ticker] = b
			order = append(order, tx.Ticker)
		}
		units := tx.Quantity.value.Abs()

		switch tx.Type {
		case Buy:
			if units.LessThan(opts.Epsilon.value) {
				continue
			}
			b.lots = append(b.lots, Lot{Fund: tx.Ticker, Date: tx.Date, Units: Q(units), EntryPrice: M(tx.Price.value, opts.LocalCurrency)})
		case Sell:
			remaining := units
			for len(b.lots) > 0 && remaining.IsPositive() {
				lot := &b.lots[0]
				used := decimal.Min(remaining, lot.Units.value)
				b.realized = b.realized.Add(used.Mul(tx.Price.value.Sub(lot.EntryPrice.value)))
				lot.Units = Q(lot.Units.value.Sub(used))
				remaining = remaining.Sub(used)
				if lot.Units.value.LessThan(opts.Epsilon.value) {
					b.lots = b.lots[1:]
				}
			}
			if remaining.GreaterThanOrEqual(opts.Epsilon.value) {
				anomalies = append(anomalies, Anomaly{
					Kind:   OverSell,
					Ticker: tx.Ticker,
					Date:   tx.Date,
					Detail: fmt.Sprintf("redemption of %s units but only %s held, clamped", units, units.Sub(remaining)),
				})
			}
		}
	}
	return books, order, anomalies
}

// ComputeFunds values mutual fund lots on a given day.
//
// Movements after day are ignored. Each lot is valued at the last unit value
// published on or before day, and its daily P&L is the move from the unit
// value published just before. The USD capital of a lot uses the rate of its
// subscription day, the same way Compute costs buys.
//
// Like Compute, it never fails and reports the data problems as anomalies.
func ComputeFunds(movements []Trade, prices *FundPrices, day date.Date, current Rate, rates *ExchangeRates, opts Options) FundResult {
	opts = opts.withDefaults()
	local := opts.LocalCurrency

	var until []Trade
	for _, tx := range movements {
		if !tx.Date.After(day) {
			until = append(until, tx)
		}
	}
	books, order, anomalies := replayFunds(until, opts)
	report := func(a Anomaly) { anomalies = append(anomalies, a) }

	res := FundResult{Totals: FundTotals{
		Invested:     M(0, local),
		Valuation:    M(0, local),
		PnL:          M(0, local),
		DailyPnL:     M(0, local),
		Realized:     M(0, local),
		InvestedUSD:  M(0, USD),
		ValuationUSD: M(0, USD),
		PnLUSD:       M(0, USD),
		DailyPnLUSD:  M(0, USD),
	}}
	if !current.IsValid() && len(order) > 0 {
		report(Anomaly{Kind: InvalidRate, Detail: fmt.Sprintf("current rate %s is not positive, using each fund's average rate", current)})
	}

	for _, fund := range order {
		b := books[fund]
		res.Totals.Realized = res.Totals.Realized.Add(M(b.realized, local))
		if len(b.lots) == 0 {
			continue
		}

		on, last, previous := prices.asOf(fund, day)
		if !last.IsPositive() {
			report(Anomaly{Kind: MissingPrice, Ticker: fund, Detail: "no unit value, valued at 0"})
			last, previous = decimal.Zero, decimal.Zero
		}
		f := FundPosition{
			Fund:          fund,
			Capital:       M(0, local),
			Price:         M(last, local),
			PriceDate:     on,
			PreviousPrice: M(previous, local),
			Valuation:     M(0, local),
			DailyPnL:      M(0, local),
			Realized:      M(b.realized, local),
			CapitalUSD:    M(0, USD),
		}
		units := decimal.Zero
		// uncosted is the capital of lots bought without any usable rate.
		uncosted := M(0, local)
		for _, lot := range b.lots {
			lv := LotValuation{
				Lot:       lot,
				Capital:   lot.Invested(),
				Valuation: f.Price.Mul(lot.Units),
				DailyPnL:  M(0, local),
			}
			lv.PnL = lv.Valuation.Sub(lv.Capital)
			if last.IsPositive() && previous.IsPositive() {
				lv.DailyPnL = M(lot.Units.value.Mul(last.Sub(previous)), local)
			}

			rate, missing := historicalRate(rates, current, fund, lot.Date)
			if missing != nil {
				report(*missing)
			}
			if rate.IsValid() {
				f.CapitalUSD = f.CapitalUSD.Add(rate.ToUSD(lv.Capital))
			} else {
				uncosted = uncosted.Add(lv.Capital)
			}

			units = units.Add(lot.Units.value)
			f.Capital = f.Capital.Add(lv.Capital)
			f.Valuation = f.Valuation.Add(lv.Valuation)
			f.DailyPnL = f.DailyPnL.Add(lv.DailyPnL)
			f.Lots = append(f.Lots, lv)
		}
		f.Units = Q(units)
		f.AvgEntryPrice = f.Capital.Div(f.Units)
		f.PnL = f.Valuation.Sub(f.Capital)
		f.PnLPct = percentOf(f.PnL, f.Capital)

		rate := current
		if !rate.IsValid() {
			rate = impliedRate(f.Capital.Sub(uncosted), f.CapitalUSD)
		}
		f.ValuationUSD = rate.ToUSD(f.Valuation)
		f.PnLUSD = f.ValuationUSD.Sub(f.CapitalUSD)
		f.PnLUSDPct = percentOf(f.PnLUSD, f.CapitalUSD)
		f.DailyPnLUSD = rate.ToUSD(f.DailyPnL)
		res.Funds = append(res.Funds, f)
	}

	slices.SortStableFunc(res.Funds, func(a, b FundPosition) int {
		if c := b.Valuation.value.Cmp(a.Valuation.value); c != 0 {
			return c
		}
		return cmp.Compare(a.Fund, b.Fund)
	})

	t := &res.Totals
	for _, f := range res.Funds {
		t.Invested = t.Invested.Add(f.Capital)
		t.Valuation = t.Valuation.Add(f.Valuation)
		t.DailyPnL = t.DailyPnL.Add(f.DailyPnL)
		t.InvestedUSD = t.InvestedUSD.Add(f.CapitalUSD)
		t.ValuationUSD = t.ValuationUSD.Add(f.ValuationUSD)
		t.DailyPnLUSD = t.DailyPnLUSD.Add(f.DailyPnLUSD)
	}
	t.PnL = t.Valuation.Sub(t.Invested)
	t.PnLPct = percentOf(t.PnL, t.Invested)
	t.PnLUSD = t.ValuationUSD.Sub(t.InvestedUSD)
	t.PnLUSDPct = percentOf(t.PnLUSD, t.InvestedUSD)
	res.Anomalies = anomalies
	return res
}
