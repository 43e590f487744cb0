package cartera

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/etnz/cartera/date"
	"github.com/shopspring/decimal"
)

// Result is the outcome of a valuation.
type Result struct {
	// Positions are the open holdings, largest valuation first.
	Positions []Position `json:"positions"`
	Totals    Totals     `json:"totals"`
	// Anomalies lists the data problems absorbed while computing.
	Anomalies []Anomaly `json:"anomalies,omitempty"`
}

// holding is the running state of one ticker while folding over the trades.
type holding struct {
	ticker    string
	quantity  decimal.Decimal
	costLocal decimal.Decimal
	costUSD   decimal.Decimal
	// uncosted is the part of costLocal bought without any usable rate. It
	// has no USD counterpart and stays out of the implied rate.
	uncosted decimal.Decimal
	realized decimal.Decimal
}

func (h *holding) reset() {
	h.quantity, h.costLocal, h.costUSD, h.uncosted = decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
}

// valuation holds the inputs and the accumulated state of one Compute call.
type valuation struct {
	opts      Options
	quotes    Quotes
	current   Rate
	rates     *ExchangeRates
	holdings  map[string]*holding
	order     []string // tickers in order of first appearance
	anomalies []Anomaly
}

// Compute values a portfolio from its trades.
//
// Trades are replayed in date order (same day trades keep their input order)
// using weighted average cost. Each buy is also costed in USD with the rate
// of its day found in rates, or the closest one before it. The open holdings
// are then valued with quotes and the current rate.
//
// Compute never fails: missing prices, invalid rates and over-sells are
// absorbed and reported as Result.Anomalies. It does not modify its inputs and
// has no side effect, so it can be called concurrently.
func Compute(trades []Trade, quotes Quotes, current Rate, rates *ExchangeRates, opts Options) Result {
	v := &valuation{
		opts:     opts.withDefaults(),
		quotes:   quotes,
		current:  current,
		rates:    rates,
		holdings: make(map[string]*holding),
	}

	sorted := slices.Clone(trades)
	slices.SortStableFunc(sorted, func(a, b Trade) int { return a.Date.Compare(b.Date) })
	for _, tx := range sorted {
		v.apply(tx)
	}

	if !current.IsValid() && len(v.order) > 0 {
		v.report(Anomaly{Kind: InvalidRate, Detail: fmt.Sprintf("current rate %s is not positive, using each position's average rate", current)})
	}

	res := Result{
		Positions: make([]Position, 0, len(v.order)),
		Totals:    newTotals(v.opts.LocalCurrency),
	}
	for _, ticker := range v.order {
		h := v.holdings[ticker]
		res.Totals.RealizedPnL = res.Totals.RealizedPnL.Add(M(h.realized, v.opts.LocalCurrency))
		if h.quantity.LessThanOrEqual(v.opts.Epsilon.value) {
			continue
		}
		res.Positions = append(res.Positions, v.position(h))
	}

	slices.SortStableFunc(res.Positions, func(a, b Position) int {
		if c := b.CurrentValueLocal.value.Cmp(a.CurrentValueLocal.value); c != 0 {
			return c
		}
		return cmp.Compare(a.Ticker, b.Ticker)
	})

	for _, p := range res.Positions {
		res.Totals.add(p)
	}
	res.Totals.ratios()
	res.Anomalies = v.anomalies
	return res
}

func (v *valuation) report(a Anomaly) { v.anomalies = append(v.anomalies, a) }

// holdingOf returns the running state for ticker, creating it if needed.
func (v *valuation) holdingOf(ticker string) *holding {
	h, ok := v.holdings[ticker]
	if !ok {
		h = &holding{ticker: ticker}
		v.holdings[ticker] = h
		v.order = append(v.order, ticker)
	}
	return h
}

// apply folds a single trade into its ticker's holding.
func (v *valuation) apply(tx Trade) {
	h := v.holdingOf(tx.Ticker)
	qty := tx.Quantity.value.Abs()
	price := tx.Price.value

	switch tx.Type {
	case Buy:
		cost := qty.Mul(price)
		h.quantity = h.quantity.Add(qty)
		h.costLocal = h.costLocal.Add(cost)
		if rate := v.historicalRate(tx); rate.IsValid() {
			h.costUSD = h.costUSD.Add(cost.Div(rate.value))
		} else {
			h.uncosted = h.uncosted.Add(cost)
		}

	case Sell:
		held := h.quantity
		if qty.GreaterThan(held) {
			v.report(Anomaly{
				Kind:   OverSell,
				Ticker: tx.Ticker,
				Date:   tx.Date,
				Detail: fmt.Sprintf("sell of %s but only %s held, clamped", qty, held),
			})
		}
		if !held.IsPositive() {
			return
		}
		// The average costs are taken before mutating the holding, so that the
		// remaining units keep the same average.
		avgLocal := h.costLocal.Div(held)
		avgUSD := h.costUSD.Div(held)
		avgUncosted := h.uncosted.Div(held)
		sold := decimal.Min(qty, held)

		h.realized = h.realized.Add(sold.Mul(price.Sub(avgLocal)))
		if sold.Equal(held) {
			h.reset()
		} else {
			h.quantity = held.Sub(sold)
			h.costLocal = h.costLocal.Sub(sold.Mul(avgLocal))
			h.costUSD = h.costUSD.Sub(sold.Mul(avgUSD))
			h.uncosted = h.uncosted.Sub(sold.Mul(avgUncosted))
		}
	}

	if h.quantity.LessThan(v.opts.Epsilon.value) {
		// dust
		h.reset()
	}
}

// historicalRate returns the exchange rate to cost a buy with.
func (v *valuation) historicalRate(tx Trade) Rate {
	r, missing := historicalRate(v.rates, v.current, tx.Ticker, tx.Date)
	if missing != nil {
		v.report(*missing)
	}
	return r
}

// historicalRate returns the rate of day in rates, or the closest one before
// it. An empty series means current is the only rate known. When the series
// has no usable rate for day, current is returned along with the anomaly to
// report.
func historicalRate(rates *ExchangeRates, current Rate, ticker string, day date.Date) (Rate, *Anomaly) {
	if rates.Len() == 0 {
		return current, nil
	}
	r, ok := rates.AsOf(day)
	if !ok || !r.IsValid() {
		return current, &Anomaly{
			Kind:   MissingHistoricalRate,
			Ticker: ticker,
			Date:   day,
			Detail: fmt.Sprintf("no exchange rate on or before %s, using current rate %s", day, current),
		}
	}
	return r, nil
}

// position derives the reported figures of an open holding.
func (v *valuation) position(h *holding) Position {
	local := v.opts.LocalCurrency
	qty := Q(h.quantity)
	costLocal := M(h.costLocal, local)
	costUSD := M(h.costUSD, USD)

	p := Position{
		Ticker:           h.ticker,
		Quantity:         qty,
		CostLocal:        costLocal,
		CostUSD:          costUSD,
		AvgCostLocal:     costLocal.Div(qty),
		AvgCostUSD:       costUSD.Div(qty),
		RealizedPnLLocal: M(h.realized, local),
		WeightedAvgRate:  impliedRate(M(h.costLocal.Sub(h.uncosted), local), costUSD),
	}

	price := decimal.Zero
	q, ok := v.quotes[h.ticker]
	if ok {
		p.Class = q.Class
		price = v.opts.quotedPrice(q)
	}
	if !price.IsPositive() {
		price = decimal.Zero
		v.report(Anomaly{Kind: MissingPrice, Ticker: h.ticker, Detail: "no price, valued at 0"})
	}
	p.CurrentPrice = M(price, local)
	p.CurrentValueLocal = p.CurrentPrice.Mul(qty)
	p.UnrealizedPnLLocal = p.CurrentValueLocal.Sub(costLocal)
	p.UnrealizedPnLPct = percentOf(p.UnrealizedPnLLocal, costLocal)

	p.DailyPnLLocal = M(0, local)
	if ok && q.DailyChange != nil {
		change := *q.DailyChange
		p.DailyChange = &change
		p.DailyPnLLocal = p.CurrentValueLocal.Scale(change.Fraction())
	}

	rate := v.current
	if !rate.IsValid() {
		rate = p.WeightedAvgRate
	}
	p.FXAttributedPnL = M(0, local)
	if p.WeightedAvgRate.IsValid() {
		p.FXAttributedPnL = M(h.costUSD.Mul(rate.value.Sub(p.WeightedAvgRate.value)), local)
	}
	p.PriceAttributedPnL = p.UnrealizedPnLLocal.Sub(p.FXAttributedPnL)

	p.CurrentValueUSD = rate.ToUSD(p.CurrentValueLocal)
	p.UnrealizedPnLUSD = rate.ToUSD(p.UnrealizedPnLLocal)
	p.DailyPnLUSD = rate.ToUSD(p.DailyPnLLocal)
	p.ResultUSD = p.CurrentValueUSD.Sub(costUSD)
	p.ResultUSDPct = percentOf(p.ResultUSD, costUSD)
	return p
}
