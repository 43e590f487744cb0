package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/cartera"
	"github.com/google/subcommands"
)

type extractCmd struct {
	output string
}

func (*extractCmd) Name() string     { return "extract" }
func (*extractCmd) Synopsis() string { return "convert a market data document into a quotes file" }
func (*extractCmd) Usage() string {
	return `valuar extract [-o <quotes file>] [<document>]

  Reads a market data JSON document (from a file, or stdin) and extracts a
  quote per instrument using the JSONPath expressions of the [extract]
  section of the configuration. The quotes file is replaced.
`
}

func (c *extractCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Quotes file to write, defaults to the configured one")
}

func (c *extractCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, status := mustLoad()
	if a == nil {
		return status
	}

	var in io.Reader = os.Stdin
	if f.NArg() == 1 {
		file, err := os.Open(f.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening document: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		in = file
	}

	quotes, err := a.cfg.Extract.Extract(in, a.cfg.Currency())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error extracting quotes: %v\n", err)
		return subcommands.ExitFailure
	}

	output := c.output
	if output == "" {
		output = a.cfg.Files.Quotes
	}
	if err := writeQuotes(output, quotes); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing quotes: %v\n", err)
		return subcommands.ExitFailure
	}
	a.log.Info().Str("file", output).Int("quotes", len(quotes)).Msg("quotes extracted")
	return subcommands.ExitSuccess
}

// writeQuotes replaces the quotes file.
func writeQuotes(filename string, quotes cartera.Quotes) error {
	return replaceFile(filename, func(w io.Writer) error { return cartera.EncodeQuotes(w, quotes) })
}

// replaceFile writes into a temporary file that is then renamed to filename,
// so that filename is never left half written.
func replaceFile(filename string, write func(io.Writer) error) error {
	tmp := filename + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", tmp, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cannot write %q: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filename)
}
