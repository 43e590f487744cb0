package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/etnz/cartera"
	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the trades file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `valuar fmt

  Validates the trades file, sorts the trades by date and writes them back
  with canonical field names. Trades of the same day keep their order.
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (*fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := mustLoad()
	if a == nil {
		return status
	}
	trades, err := a.trades()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load trades: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(trades) == 0 {
		a.log.Warn().Msg("no trades to format")
		return subcommands.ExitSuccess
	}
	if err := replaceFile(a.cfg.Files.Trades, func(w io.Writer) error { return formatTrades(w, trades) }); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving trades: %v\n", err)
		return subcommands.ExitFailure
	}
	a.log.Info().Str("file", a.cfg.Files.Trades).Int("trades", len(trades)).Msg("trades formatted")
	return subcommands.ExitSuccess
}

// formatTrades writes trades sorted by date in the canonical JSONL form.
func formatTrades(w io.Writer, trades []cartera.Trade) error {
	trades = slices.Clone(trades)
	slices.SortStableFunc(trades, func(x, y cartera.Trade) int { return x.Date.Compare(y.Date) })
	for _, tx := range trades {
		if err := cartera.EncodeTrade(w, tx); err != nil {
			return err
		}
	}
	return nil
}
