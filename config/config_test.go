package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/cartera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cartera.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileIsDefault(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nothing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, "ARS", c.Currency())
}

func TestLoad(t *testing.T) {
	path := write(t, `
[engine]
local_currency = "usd"
epsilon = 0.01
bond_classes = ["GOV"]
bond_fraction_threshold = 10.0

[files]
trades = "data/trades.jsonl"
fund_prices = "data/vcp.jsonl"

[log]
level = "debug"
pretty = false

[extract]
list = "$.items"
ticker = "$.code"
price = "$.last"
default_class = "CEDEAR"
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/trades.jsonl", c.Files.Trades)
	// Keys absent from the file keep their default.
	assert.Equal(t, "quotes.json", c.Files.Quotes)
	assert.Equal(t, "funds.jsonl", c.Files.Funds)
	assert.Equal(t, "data/vcp.jsonl", c.Files.FundPrices)
	assert.Equal(t, LogConfig{Level: "debug", Pretty: false}, c.Log)
	assert.Equal(t, "$.items", c.Extract.List)
	assert.Equal(t, cartera.AssetClass("CEDEAR"), c.Extract.DefaultClass)

	opts := c.Options()
	assert.Equal(t, "USD", opts.LocalCurrency)
	assert.Equal(t, "USD", c.Currency())
	assert.True(t, opts.Epsilon.Equal(cartera.Q(0.01)))
	assert.Equal(t, []cartera.AssetClass{"GOV"}, opts.BondClasses)
	assert.Equal(t, "10", opts.BondFractionThreshold.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CARTERA_TRADES", "/tmp/t.jsonl")
	t.Setenv("CARTERA_RATES", "/tmp/r.jsonl")
	t.Setenv("CARTERA_FUNDS", "/tmp/f.jsonl")
	t.Setenv("CARTERA_LOG_LEVEL", "warn")
	c, err := Load(write(t, "[files]\ntrades = \"x.jsonl\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/t.jsonl", c.Files.Trades)
	assert.Equal(t, "quotes.json", c.Files.Quotes)
	assert.Equal(t, "/tmp/r.jsonl", c.Files.Rates)
	assert.Equal(t, "/tmp/f.jsonl", c.Files.Funds)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoad_VerboseFromExtensionEnv(t *testing.T) {
	t.Setenv("CARTERA_LOG_LEVEL", "warn")
	t.Setenv("CARTERA_VERBOSE", "true")
	c, err := Load(write(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)

	t.Setenv("CARTERA_VERBOSE", "false")
	c, err = Load(write(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)

	t.Setenv("CARTERA_VERBOSE", "loud")
	_, err = Load(write(t, ""))
	assert.ErrorContains(t, err, "CARTERA_VERBOSE")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[engine\n", "cannot parse"},
		{"negative epsilon", "[engine]\nepsilon = -1.0\n", "epsilon cannot be negative"},
		{"level", "[log]\nlevel = \"loud\"\n", "unknown log.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(write(t, tc.content))
			assert.ErrorContains(t, err, tc.want)
		})
	}
}
