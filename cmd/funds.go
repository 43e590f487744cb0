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

// fundsCmd holds the flags for the 'funds' subcommand.
type fundsCmd struct {
	date string
	rate float64
	json bool
}

func (*fundsCmd) Name() string     { return "funds" }
func (*fundsCmd) Synopsis() string { return "display the mutual fund lots and their valuation" }
func (*fundsCmd) Usage() string {
	return `valuar funds [-d <date>] [-r <rate>] [-json]

  Values every open mutual fund subscription at the last published unit
  value. Redemptions consume the oldest subscriptions first.
`
}

func (c *fundsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the report, movements after that date are ignored")
	f.Float64Var(&c.rate, "r", 0, "Current exchange rate in local currency per USD")
	f.BoolVar(&c.json, "json", false, "Print the result as JSON")
}

func (c *fundsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, status := mustLoad()
	if a == nil {
		return status
	}

	res, rate, err := a.valuateFunds(on, c.rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing fund valuation: %v\n", err)
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
	printMarkdown(renderer.RenderFunds(renderer.NewFunds(on, a.cfg.Currency(), rate, res)))
	return subcommands.ExitSuccess
}
