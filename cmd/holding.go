package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cartera/date"
	"github.com/etnz/cartera/renderer"
	"github.com/google/subcommands"
)

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	date string
	rate float64
	json bool
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the positions and their valuation" }
func (*holdingCmd) Usage() string {
	return `valuar holding [-d <date>] [-r <rate>] [-json]

  Values every open position with the latest quotes, and attributes the
  unrealized P&L to the exchange rate and to the price moves.
  The exchange rate defaults to the last one known on the date.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the report, trades after that date are ignored")
	f.Float64Var(&c.rate, "r", 0, "Current exchange rate in local currency per USD")
	f.BoolVar(&c.json, "json", false, "Print the result as JSON")
}

func (c *holdingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderHolding(renderer.NewHolding(on, a.cfg.Currency(), rate, res)))
	return subcommands.ExitSuccess
}
