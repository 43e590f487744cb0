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

type fundingCmd struct {
	from string
	to   string
	json bool
}

func (*fundingCmd) Name() string     { return "funding" }
func (*fundingCmd) Synopsis() string { return "display the carry of the cauciones against the funds" }
func (*fundingCmd) Usage() string {
	return `valuar funding [-from <date>] [-to <date>] [-json]

  Replays the repo loans (cauciones) and the fund movements day by day, and
  compares what the funds earned to the interest paid. The period defaults to
  the last 30 days.
`
}

func (c *fundingCmd) SetFlags(f *flag.FlagSet) {
	today := date.Today()
	f.StringVar(&c.from, "from", today.Add(-30).String(), "First day of the period")
	f.StringVar(&c.to, "to", today.String(), "Last day of the period")
	f.BoolVar(&c.json, "json", false, "Print the result as JSON")
}

func (c *fundingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := date.Parse(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := date.Parse(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
		return subcommands.ExitUsageError
	}
	if to.Before(from) {
		fmt.Fprintf(os.Stderr, "Error: the period ends on %s, before it starts on %s\n", to, from)
		return subcommands.ExitUsageError
	}
	a, status := mustLoad()
	if a == nil {
		return status
	}

	res, err := a.funding(from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing funding: %v\n", err)
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
	printMarkdown(renderer.RenderFunding(renderer.NewFunding(from, to, a.cfg.Currency(), res)))
	return subcommands.ExitSuccess
}
