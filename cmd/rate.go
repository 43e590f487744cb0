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

type rateCmd struct {
	date string
	rate float64
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "record the exchange rate of a day" }
func (*rateCmd) Usage() string {
	return `valuar rate [-d <date>] <rate>

  Appends the exchange rate, in local currency per USD, to the rates file.
  A later line for the same day replaces the earlier one.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the rate (YYYY-MM-DD)")
}

func (c *rateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	r, err := cartera.ParseRate(f.Arg(0))
	if err != nil || !r.IsValid() {
		fmt.Fprintf(os.Stderr, "Error: rate must be a positive number, got %q\n", f.Arg(0))
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

	if err := a.appendRate(day, r); err != nil {
		fmt.Fprintf(os.Stderr, "Error appending rate: %v\n", err)
		return subcommands.ExitFailure
	}
	a.log.Info().Str("file", a.cfg.Files.Rates).Stringer("on", day).Stringer("rate", r).Msg("rate appended")
	return subcommands.ExitSuccess
}
