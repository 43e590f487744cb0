// Package cmd implements the valuar command line: it values a portfolio of
// trades and maintains its data files.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/cartera"
	"github.com/etnz/cartera/config"
	"github.com/etnz/cartera/date"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&holdingCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&checkCmd{}, "reports")
	c.Register(&fundsCmd{}, "reports")
	c.Register(&fundingCmd{}, "reports")

	c.Register(&buyCmd{}, "trades")
	c.Register(&sellCmd{}, "trades")
	c.Register(&fmtCmd{}, "trades")

	c.Register(&rateCmd{}, "market data")
	c.Register(&extractCmd{}, "market data")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", defaultConfigFile(), "Path to the TOML configuration file")
	tradesFile = flag.String("trades", "", "Path to the trades file (JSONL format), overrides the configuration")
	quotesFile = flag.String("quotes", "", "Path to the quotes file (JSON format), overrides the configuration")
	ratesFile  = flag.String("rates", "", "Path to the exchange rates file (JSONL format), overrides the configuration")
	Verbose    = flag.Bool("v", false, "Verbose output, same as log level debug")
)

func defaultConfigFile() string {
	if v := os.Getenv(EnvConfigFile); v != "" {
		return v
	}
	return "cartera.toml"
}

// app is the loaded configuration and the logger built from it.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

// load reads the configuration and applies the command line overrides.
func load() (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *tradesFile != "" {
		cfg.Files.Trades = *tradesFile
	}
	if *quotesFile != "" {
		cfg.Files.Quotes = *quotesFile
	}
	if *ratesFile != "" {
		cfg.Files.Rates = *ratesFile
	}
	if *Verbose {
		cfg.Log.Level = "debug"
	}
	return &app{cfg: cfg, log: newLogger(cfg.Log, os.Stderr)}, nil
}

// mustLoad is load for commands: it prints the error and returns the exit status to use.
func mustLoad() (*app, subcommands.ExitStatus) {
	a, err := load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return a, subcommands.ExitSuccess
}

// trades decodes the trades file. A missing file is an empty portfolio.
func (a *app) trades() ([]cartera.Trade, error) {
	f, err := os.Open(a.cfg.Files.Trades)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Warn().Str("file", a.cfg.Files.Trades).Msg("trades file does not exist, the portfolio is empty")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open trades file: %w", err)
	}
	defer f.Close()
	trades, err := cartera.DecodeTrades(f, a.cfg.Currency())
	if err != nil {
		return nil, fmt.Errorf("cannot decode trades file %q: %w", a.cfg.Files.Trades, err)
	}
	a.log.Debug().Str("file", a.cfg.Files.Trades).Int("trades", len(trades)).Msg("trades loaded")
	return trades, nil
}

// quotes decodes the quotes file. A missing file means no prices at all.
func (a *app) quotes() (cartera.Quotes, error) {
	f, err := os.Open(a.cfg.Files.Quotes)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Warn().Str("file", a.cfg.Files.Quotes).Msg("quotes file does not exist, every position is valued at 0")
		return cartera.Quotes{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open quotes file: %w", err)
	}
	defer f.Close()
	quotes, err := cartera.DecodeQuotes(f, a.cfg.Currency())
	if err != nil {
		return nil, fmt.Errorf("cannot decode quotes file %q: %w", a.cfg.Files.Quotes, err)
	}
	a.log.Debug().Str("file", a.cfg.Files.Quotes).Int("quotes", len(quotes)).Msg("quotes loaded")
	return quotes, nil
}

// rates decodes the exchange rates file. A missing file is an empty history.
func (a *app) rates() (*cartera.ExchangeRates, error) {
	f, err := os.Open(a.cfg.Files.Rates)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Warn().Str("file", a.cfg.Files.Rates).Msg("rates file does not exist, the current rate is used for every trade")
		return cartera.NewExchangeRates(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open rates file: %w", err)
	}
	defer f.Close()
	rates, err := cartera.DecodeRates(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode rates file %q: %w", a.cfg.Files.Rates, err)
	}
	a.log.Debug().Str("file", a.cfg.Files.Rates).Int("rates", rates.Len()).Msg("rates loaded")
	return rates, nil
}

// valuate computes the portfolio on a given day.
//
// Trades after that day are ignored. When rate is zero, the last known rate on
// or before that day is used.
func (a *app) valuate(on date.Date, rate float64) (cartera.Result, cartera.Rate, error) {
	trades, err := a.trades()
	if err != nil {
		return cartera.Result{}, cartera.Rate{}, err
	}
	quotes, err := a.quotes()
	if err != nil {
		return cartera.Result{}, cartera.Rate{}, err
	}
	history, err := a.rates()
	if err != nil {
		return cartera.Result{}, cartera.Rate{}, err
	}

	var until []cartera.Trade
	for _, tx := range trades {
		if !tx.Date.After(on) {
			until = append(until, tx)
		}
	}

	current := currentRate(history, on, rate)
	a.log.Debug().Stringer("rate", current).Stringer("on", on).Int("trades", len(until)).Msg("computing valuation")

	res := cartera.Compute(until, quotes, current, history, a.cfg.Options())
	for _, an := range res.Anomalies {
		a.log.Warn().Stringer("kind", an.Kind).Str("ticker", an.Ticker).Msg(an.Detail)
	}
	return res, current, nil
}

// currentRate is rate, or the last known rate on day when rate is zero.
func currentRate(history *cartera.ExchangeRates, on date.Date, rate float64) cartera.Rate {
	if rate == 0 {
		if r, ok := history.AsOf(on); ok {
			return r
		}
	}
	return cartera.R(rate)
}

// funds decodes the fund movements file. A missing file means no fund.
func (a *app) funds() ([]cartera.Trade, error) {
	f, err := os.Open(a.cfg.Files.Funds)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Debug().Str("file", a.cfg.Files.Funds).Msg("funds file does not exist")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open funds file: %w", err)
	}
	defer f.Close()
	movements, err := cartera.DecodeTrades(f, a.cfg.Currency())
	if err != nil {
		return nil, fmt.Errorf("cannot decode funds file %q: %w", a.cfg.Files.Funds, err)
	}
	a.log.Debug().Str("file", a.cfg.Files.Funds).Int("movements", len(movements)).Msg("fund movements loaded")
	return movements, nil
}

// fundPrices decodes the fund unit values file. A missing file means no value at all.
func (a *app) fundPrices() (*cartera.FundPrices, error) {
	f, err := os.Open(a.cfg.Files.FundPrices)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Warn().Str("file", a.cfg.Files.FundPrices).Msg("fund prices file does not exist, every fund is valued at 0")
		return cartera.NewFundPrices(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open fund prices file: %w", err)
	}
	defer f.Close()
	prices, err := cartera.DecodeFundPrices(f, a.cfg.Currency())
	if err != nil {
		return nil, fmt.Errorf("cannot decode fund prices file %q: %w", a.cfg.Files.FundPrices, err)
	}
	a.log.Debug().Str("file", a.cfg.Files.FundPrices).Int("funds", prices.Len()).Msg("fund prices loaded")
	return prices, nil
}

// valuateFunds computes the mutual fund lots on a given day, with the same
// rate rules as valuate.
func (a *app) valuateFunds(on date.Date, rate float64) (cartera.FundResult, cartera.Rate, error) {
	movements, err := a.funds()
	if err != nil {
		return cartera.FundResult{}, cartera.Rate{}, err
	}
	prices, err := a.fundPrices()
	if err != nil {
		return cartera.FundResult{}, cartera.Rate{}, err
	}
	history, err := a.rates()
	if err != nil {
		return cartera.FundResult{}, cartera.Rate{}, err
	}

	current := currentRate(history, on, rate)
	a.log.Debug().Stringer("rate", current).Stringer("on", on).Int("movements", len(movements)).Msg("computing fund valuation")

	res := cartera.ComputeFunds(movements, prices, on, current, history, a.cfg.Options())
	for _, an := range res.Anomalies {
		a.log.Warn().Stringer("kind", an.Kind).Str("ticker", an.Ticker).Msg(an.Detail)
	}
	return res, current, nil
}

// cauciones decodes the repo loans file. A missing file means no debt.
func (a *app) cauciones() ([]cartera.Caucion, error) {
	f, err := os.Open(a.cfg.Files.Cauciones)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Warn().Str("file", a.cfg.Files.Cauciones).Msg("cauciones file does not exist, there is no debt")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open cauciones file: %w", err)
	}
	defer f.Close()
	loans, err := cartera.DecodeCauciones(f, a.cfg.Currency())
	if err != nil {
		return nil, fmt.Errorf("cannot decode cauciones file %q: %w", a.cfg.Files.Cauciones, err)
	}
	a.log.Debug().Str("file", a.cfg.Files.Cauciones).Int("loans", len(loans)).Msg("cauciones loaded")
	return loans, nil
}

// funding computes the carry of the repo loans against the funds they pay for.
func (a *app) funding(from, to date.Date) (cartera.Funding, error) {
	loans, err := a.cauciones()
	if err != nil {
		return cartera.Funding{}, err
	}
	movements, err := a.funds()
	if err != nil {
		return cartera.Funding{}, err
	}
	prices, err := a.fundPrices()
	if err != nil {
		return cartera.Funding{}, err
	}
	a.log.Debug().Stringer("from", from).Stringer("to", to).Int("loans", len(loans)).Msg("computing funding")
	return cartera.ComputeFunding(loans, movements, prices, from, to, a.cfg.Options()), nil
}

// appendTrade appends a trade to the trades file.
func (a *app) appendTrade(tx cartera.Trade) error {
	return appendTo(a.cfg.Files.Trades, func(f *os.File) error { return cartera.EncodeTrade(f, tx) })
}

// appendRate appends an exchange rate to the rates file.
func (a *app) appendRate(on date.Date, r cartera.Rate) error {
	return appendTo(a.cfg.Files.Rates, func(f *os.File) error { return cartera.EncodeRate(f, on, r) })
}

// appendTo opens filename in append mode, creating it if it doesn't exist, and calls write.
func appendTo(filename string, write func(*os.File) error) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot open %q: %w", filename, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("cannot write to %q: %w", filename, err)
	}
	return f.Close()
}
