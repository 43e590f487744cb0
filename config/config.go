// Package config loads the settings of the valuar command line.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/cartera"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Config holds all the settings read from the TOML file.
type Config struct {
	Engine  EngineConfig           `toml:"engine"`
	Files   FilesConfig            `toml:"files"`
	Log     LogConfig              `toml:"log"`
	Extract cartera.QuoteExtractor `toml:"extract"`
}

// EngineConfig holds the valuation settings.
type EngineConfig struct {
	LocalCurrency         string   `toml:"local_currency"`
	Epsilon               float64  `toml:"epsilon"`
	BondClasses           []string `toml:"bond_classes"`
	BondFractionThreshold float64  `toml:"bond_fraction_threshold"`
}

// FilesConfig holds the location of the data files.
type FilesConfig struct {
	Trades string `toml:"trades"`
	Quotes string `toml:"quotes"`
	Rates  string `toml:"rates"`
	// Funds holds the mutual fund subscriptions and redemptions, in the
	// trades format.
	Funds      string `toml:"funds"`
	FundPrices string `toml:"fund_prices"`
	// Cauciones holds the repo loans that fund the subscriptions.
	Cauciones string `toml:"cauciones"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `toml:"level"` // debug, info, warn, error
	Pretty bool   `toml:"pretty"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			LocalCurrency:         cartera.DefaultLocalCurrency,
			Epsilon:               0.0001,
			BondClasses:           []string{"BONO", "ON", "LETRA"},
			BondFractionThreshold: 2,
		},
		Files: FilesConfig{
			Trades:     "trades.jsonl",
			Quotes:     "quotes.json",
			Rates:      "rates.jsonl",
			Funds:      "funds.jsonl",
			FundPrices: "fund_prices.jsonl",
			Cauciones:  "cauciones.jsonl",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Extract: cartera.QuoteExtractor{
			List:   "$.titulos",
			Ticker: "$.simbolo",
			Price:  "$.ultimoPrecio",
			Change: "$.variacionPorcentual",
			Class:  "$.tipo",
		},
	}
}

// Load reads the configuration at path over the defaults, then applies the
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
		default:
			if err := toml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("cannot parse config file %q: %w", path, err)
			}
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	return c, nil
}

// applyEnv lets CARTERA_* variables override the file locations and the log
// level. CARTERA_VERBOSE, as set for extensions, wins over CARTERA_LOG_LEVEL.
func (c *Config) applyEnv() error {
	if v := os.Getenv("CARTERA_TRADES"); v != "" {
		c.Files.Trades = v
	}
	if v := os.Getenv("CARTERA_QUOTES"); v != "" {
		c.Files.Quotes = v
	}
	if v := os.Getenv("CARTERA_RATES"); v != "" {
		c.Files.Rates = v
	}
	if v := os.Getenv("CARTERA_FUNDS"); v != "" {
		c.Files.Funds = v
	}
	if v := os.Getenv("CARTERA_FUND_PRICES"); v != "" {
		c.Files.FundPrices = v
	}
	if v := os.Getenv("CARTERA_CAUCIONES"); v != "" {
		c.Files.Cauciones = v
	}
	if v := os.Getenv("CARTERA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CARTERA_VERBOSE"); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CARTERA_VERBOSE %q: %w", v, err)
		}
		if verbose {
			c.Log.Level = zerolog.LevelDebugValue
		}
	}
	return nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Engine.Epsilon < 0 {
		errs = append(errs, errors.New("engine.epsilon cannot be negative"))
	}
	if c.Engine.BondFractionThreshold < 0 {
		errs = append(errs, errors.New("engine.bond_fraction_threshold cannot be negative"))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("unknown log.level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// Options returns the engine settings. Zero values fall back to the engine defaults.
func (c *Config) Options() cartera.Options {
	opts := cartera.Options{
		LocalCurrency:         strings.ToUpper(strings.TrimSpace(c.Engine.LocalCurrency)),
		Epsilon:               cartera.Q(c.Engine.Epsilon),
		BondFractionThreshold: decimal.NewFromFloat(c.Engine.BondFractionThreshold),
	}
	if c.Engine.BondClasses != nil {
		opts.BondClasses = make([]cartera.AssetClass, len(c.Engine.BondClasses))
		for i, b := range c.Engine.BondClasses {
			opts.BondClasses[i] = cartera.AssetClass(b)
		}
	}
	return opts
}

// Currency returns the local currency code.
func (c *Config) Currency() string {
	if cur := strings.ToUpper(strings.TrimSpace(c.Engine.LocalCurrency)); cur != "" {
		return cur
	}
	return cartera.DefaultLocalCurrency
}
