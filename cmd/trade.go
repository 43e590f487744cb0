package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cartera"
	"github.com/etnz/cartera/date"
	"github.com/google/subcommands"
)

// tradeFlags are the flags shared by buy and sell.
type tradeFlags struct {
	date     string
	ticker   string
	quantity float64
	price    float64
}

func (c *tradeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Trade date (YYYY-MM-DD)")
	f.StringVar(&c.ticker, "s", "", "Ticker")
	f.Float64Var(&c.quantity, "q", 0, "Number of units")
	f.Float64Var(&c.price, "p", 0, "Unit price in local currency")
}

// execute validates the flags and appends the trade.
func (c *tradeFlags) execute(f *flag.FlagSet, typ cartera.TradeType) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity <= 0 || c.price < 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, status := mustLoad()
	if a == nil {
		return status
	}

	tx := cartera.NewTrade(day, typ, c.ticker, cartera.Q(c.quantity), cartera.M(c.price, a.cfg.Currency()))
	if err := a.appendTrade(tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error appending trade: %v\n", err)
		return subcommands.ExitFailure
	}
	a.log.Info().Str("file", a.cfg.Files.Trades).Stringer("type", tx.Type).Str("ticker", tx.Ticker).Msg("trade appended")
	return subcommands.ExitSuccess
}

// --- Buy Command ---

type buyCmd struct{ tradeFlags }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase" }
func (*buyCmd) Usage() string {
	return `valuar buy -d <date> -s <ticker> -q <quantity> -p <price>

  Appends a buy to the trades file. The cost basis in USD is derived from the
  exchange rate known on that date.
`
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.execute(f, cartera.Buy)
}

// --- Sell Command ---

type sellCmd struct{ tradeFlags }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale" }
func (*sellCmd) Usage() string {
	return `valuar sell -d <date> -s <ticker> -q <quantity> -p <price>

  Appends a sell to the trades file. Selling leaves the average cost of the
  remaining units unchanged.
`
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.execute(f, cartera.Sell)
}
