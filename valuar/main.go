// Command valuar values a portfolio of trades in local currency and in USD.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/cartera/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	completion(commander).Complete("valuar")

	flag.Parse()

	if sub := flag.Arg(0); sub != "" && !registered(commander, sub) {
		if found, code := cmd.RunExtension(sub, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(commander *subcommands.Commander, name string) bool {
	found := false
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		if c.Name() == name {
			found = true
		}
	})
	return found
}

// completion describes the command line for shell completion.
// Install it with COMP_INSTALL=1 valuar.
func completion(commander *subcommands.Commander) *complete.Command {
	global := map[string]complete.Predictor{
		"config": predict.Files("*.toml"),
		"trades": predict.Files("*.jsonl"),
		"quotes": predict.Files("*.json"),
		"rates":  predict.Files("*.jsonl"),
		"v":      predict.Nothing,
	}
	sub := map[string]*complete.Command{}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		flags := map[string]complete.Predictor{}
		f.VisitAll(func(fl *flag.Flag) { flags[fl.Name] = predict.Something })
		sub[c.Name()] = &complete.Command{Flags: flags}
	})
	sub["extract"].Args = predict.Files("*.json")
	sub["topic"].Args = predict.Set{"readme", "trades", "quotes", "rates", "valuation", "config"}
	return &complete.Command{Sub: sub, Flags: global}
}
