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

type checkCmd struct {
	rate float64
}

func (*checkCmd) Name() string { return "check" }
func (*checkCmd) Synopsis() string {
	return "report data problems: over-sells, missing prices and rates"
}
func (*checkCmd) Usage() string {
	return `valuar check [-r <rate>]

  Values the portfolio and lists every anomaly found on the way. The exit
  status is 1 if there is any.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.rate, "r", 0, "Current exchange rate in local currency per USD")
}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := mustLoad()
	if a == nil {
		return status
	}
	on := date.Today()
	res, rate, err := a.valuate(on, c.rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing valuation: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(res.Anomalies) == 0 {
		fmt.Println("No anomalies.")
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderAnomalies(renderer.NewHolding(on, a.cfg.Currency(), rate, res)))
	return subcommands.ExitFailure
}
