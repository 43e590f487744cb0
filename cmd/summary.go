package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cartera/date"
	"github.com/etnz/cartera/renderer"
	"github.com/google/subcommands"
)

type summaryCmd struct {
	date string
	rate float64
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio totals" }
func (*summaryCmd) Usage() string {
	return `valuar summary [-d <date>] [-r <rate>]

  Displays the invested amount, the valuation and the P&L of the whole
  portfolio, in local currency and in USD.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the report, trades after that date are ignored")
	f.Float64Var(&c.rate, "r", 0, "Current exchange rate in local currency per USD")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, status := mustLoad()
	if a == nil {
		return status
	}
	res, rate, err := a.valuate(on, c.rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing valuation: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderSummary(renderer.NewHolding(on, a.cfg.Currency(), rate, res)))
	return subcommands.ExitSuccess
}
