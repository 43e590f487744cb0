package cartera

import (
	"slices"

	"github.com/etnz/cartera/date"
	"github.com/shopspring/decimal"
)

// Caucion is a collateralized repo loan that funds fund subscriptions.
// It is active from Start included to End excluded.
type Caucion struct {
	Start   date.Date `json:"start"`
	End     date.Date `json:"end"`
	Capital Money     `json:"capital"`
	// TNA is the nominal annual rate.
	TNA Percent `json:"tna"`
}

// active tells whether the loan is outstanding on day.
func (c Caucion) active(day date.Date) bool {
	return !day.Before(c.Start) && day.Before(c.End)
}

// FundingDay is the state of the debt and of the funds it pays for on one day.
type FundingDay struct {
	Date date.Date `json:"date"`
	Debt Money     `json:"debt"`
	// WeightedTNA is the rate of the active loans weighted by their capital.
	WeightedTNA  Percent `json:"weightedTNA"`
	InterestCost Money   `json:"interestCost"`
	Assets       Money   `json:"assets"`
	// Utilization is the assets over the debt.
	Utilization Percent `json:"utilization"`
	// GrossCarry is what the funds earned that day, before the interest.
	GrossCarry Money `json:"grossCarry"`
	NetCarry   Money `json:"netCarry"`
}

// Funding summarizes the carry of borrowing to hold funds over a period.
type Funding struct {
	Days      []FundingDay `json:"days"`
	AvgDebt   Money        `json:"avgDebt"`
	AvgAssets Money        `json:"avgAssets"`
	NetCarry  Money        `json:"netCarry"`
	// ROBC is the annualized return on the borrowed capital.
	ROBC Percent `json:"robc"`
	// Utilization is the one of the last day.
	Utilization Percent `json:"utilization"`
}

var daysPerYear = decimal.NewFromInt(365)

// ComputeFunding replays the loans and the fund movements day by day, from
// and to included.
//
// The interest of a day is the sum of capital × TNA / 365 over the active
// loans. Fund units are counted at the end of each day and valued at the last
// unit value published. The gross carry of a day is units × (unit value −
// previous unit value) for the funds that published that day, so a Monday
// carries the weekend.
func ComputeFunding(loans []Caucion, movements []Trade, prices *FundPrices, from, to date.Date, opts Options) Funding {
	opts = opts.withDefaults()
	local := opts.LocalCurrency
	res := Funding{AvgDebt: M(0, local), AvgAssets: M(0, local), NetCarry: M(0, local)}
	if to.Before(from) {
		return res
	}

	sorted := slices.Clone(movements)
	slices.SortStableFunc(sorted, func(a, b Trade) int { return a.Date.Compare(b.Date) })
	units := make(map[string]decimal.Decimal)
	var funds []string
	next := 0

	totalDebt, totalAssets := decimal.Zero, decimal.Zero
	for day := from; !day.After(to); day = day.Add(1) {
		for ; next < len(sorted) && !sorted[next].Date.After(day); next++ {
			tx := sorted[next]
			u, ok := units[tx.Ticker]
			if !ok {
				funds = append(funds, tx.Ticker)
			}
			qty := tx.Quantity.value.Abs()
			if tx.Type == Sell {
				qty = qty.Neg()
			}
			units[tx.Ticker] = decimal.Max(decimal.Zero, u.Add(qty))
		}

		debt, weighted := decimal.Zero, decimal.Zero
		for _, l := range loans {
			if l.active(day) {
				debt = debt.Add(l.Capital.value)
				weighted = weighted.Add(l.Capital.value.Mul(decimal.NewFromFloat(float64(l.TNA))))
			}
		}

		assets, gross := decimal.Zero, decimal.Zero
		for _, fund := range funds {
			u := units[fund]
			if u.LessThan(opts.Epsilon.value) {
				continue
			}
			on, last, previous := prices.asOf(fund, day)
			assets = assets.Add(u.Mul(last))
			if on == day && previous.IsPositive() {
				gross = gross.Add(u.Mul(last.Sub(previous)))
			}
		}

		fd := FundingDay{
			Date:         day,
			Debt:         M(debt, local),
			InterestCost: M(weighted.Div(decimal.NewFromInt(100)).Div(daysPerYear), local),
			Assets:       M(assets, local),
			GrossCarry:   M(gross, local),
		}
		if debt.IsPositive() {
			fd.WeightedTNA = Percent(weighted.Div(debt).InexactFloat64())
		}
		fd.Utilization = percentOf(fd.Assets, fd.Debt)
		fd.NetCarry = fd.GrossCarry.Sub(fd.InterestCost)
		res.Days = append(res.Days, fd)

		totalDebt = totalDebt.Add(debt)
		totalAssets = totalAssets.Add(assets)
		res.NetCarry = res.NetCarry.Add(fd.NetCarry)
	}

	n := decimal.NewFromInt(int64(len(res.Days)))
	res.AvgDebt = M(totalDebt.Div(n), local)
	res.AvgAssets = M(totalAssets.Div(n), local)
	res.Utilization = res.Days[len(res.Days)-1].Utilization
	// The period is measured between from and to, a single day has none.
	if period := len(res.Days) - 1; period > 0 && res.AvgDebt.IsPositive() {
		annual := res.NetCarry.Ratio(res.AvgDebt).Mul(daysPerYear).Div(decimal.NewFromInt(int64(period)))
		res.ROBC = Percent(annual.Mul(decimal.NewFromInt(100)).InexactFloat64())
	}
	return res
}
