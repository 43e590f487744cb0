package cartera

import (
	"bytes"
	"strings"
	"testing"

	"github.com/etnz/cartera/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTrades(t *testing.T) {
	input := `
{"date":"2025-01-02","type":"buy","ticker":"ggal ","quantity":10,"price":1520.5}
{"fecha":"2025-1-3","tipo":"VENTA","especie":"GGAL","cantidad":"4","precio":"1.620,25"}

{"tradeDate":"2025-01-04T13:00:00Z","type":"compra","symbol":"al30","quantity":100,"price":"71,2"}
`
	trades, err := DecodeTrades(strings.NewReader(input), "ARS")
	require.NoError(t, err)
	require.Len(t, trades, 3)

	assert.Equal(t, NewTrade(date.New(2025, 1, 2), Buy, "GGAL", Q(10), ARS(1520.5)).Ticker, trades[0].Ticker)
	assert.Equal(t, Buy, trades[0].Type)
	assert.True(t, trades[0].Price.Equal(ARS(1520.5)))

	assert.Equal(t, "GGAL", trades[1].Ticker)
	assert.Equal(t, Sell, trades[1].Type)
	assert.Equal(t, date.New(2025, 1, 3), trades[1].Date)
	assert.True(t, trades[1].Quantity.Equal(Q(4)))
	assert.True(t, trades[1].Price.Equal(ARS(1620.25)), "got %s", trades[1].Price.Decimal())

	assert.Equal(t, "AL30", trades[2].Ticker)
	assert.Equal(t, date.New(2025, 1, 4), trades[2].Date)
	assert.True(t, trades[2].Price.Equal(ARS(71.2)))
}

func TestDecodeTrades_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"not json", `{"date":`, "line 1"},
		{"missing ticker", `{"date":"2025-01-02","type":"buy","quantity":1,"price":1}`, "missing ticker"},
		{"unknown type", `{"date":"2025-01-02","type":"swap","ticker":"A","quantity":1,"price":1}`, "unknown trade type"},
		{"zero quantity", `{"date":"2025-01-02","type":"buy","ticker":"A","quantity":0,"price":1}`, "quantity must be positive"},
		{"negative price", `{"date":"2025-01-02","type":"buy","ticker":"A","quantity":1,"price":-1}`, "price must be set"},
		{"bad date", `{"date":"02/01/2025","type":"buy","ticker":"A","quantity":1,"price":1}`, "invalid date"},
		{"second line", "{\"date\":\"2025-01-02\",\"type\":\"buy\",\"ticker\":\"A\",\"quantity\":1,\"price\":1}\n{\"date\":\"2025-01-02\"}", "line 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeTrades(strings.NewReader(tc.input), "ARS")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDecodeTrades_UnknownTypeIsSentinel(t *testing.T) {
	_, err := DecodeTrades(strings.NewReader(`{"date":"2025-01-02","type":"swap","ticker":"A","quantity":1,"price":1}`), "ARS")
	assert.ErrorIs(t, err, ErrUnknownTradeType)
}

func TestEncodeTrade_RoundTrip(t *testing.T) {
	var b bytes.Buffer
	tx := NewTrade(date.New(2025, 3, 7), Sell, "meli", Q(2.5), ARS(18250.75))
	require.NoError(t, EncodeTrade(&b, tx))
	assert.Equal(t, `{"date":"2025-03-07","type":"sell","ticker":"MELI","quantity":"2.5","price":"18250.75"}`+"\n", b.String())

	trades, err := DecodeTrades(&b, "ARS")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, tx.Date, trades[0].Date)
	assert.Equal(t, tx.Type, trades[0].Type)
	assert.True(t, tx.Quantity.Equal(trades[0].Quantity))
	assert.True(t, tx.Price.Equal(trades[0].Price))
}

func TestDecodeQuotes(t *testing.T) {
	input := `{
  "ggal": {"price": 5120.5, "dailyChangePct": -1.25, "assetClass": "ACCION"},
  "AL30": {"ultimo": "73,50", "variacion": "0,8%", "tipo": "BONO"},
  "XYZ":  {"assetClass": "CEDEAR"}
}`
	quotes, err := DecodeQuotes(strings.NewReader(input), "ARS")
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	q := quotes["GGAL"]
	assert.True(t, q.Price.Equal(ARS(5120.5)))
	require.NotNil(t, q.DailyChange)
	assert.True(t, q.DailyChange.Equal(-1.25))
	assert.Equal(t, AssetClass("ACCION"), q.Class)

	q = quotes["AL30"]
	assert.True(t, q.Price.Equal(ARS(73.5)))
	require.NotNil(t, q.DailyChange)
	assert.True(t, q.DailyChange.Equal(0.8))
	assert.Equal(t, AssetClass("BONO"), q.Class)

	q = quotes["XYZ"]
	assert.True(t, q.Price.IsZero())
	assert.Nil(t, q.DailyChange)
}

func TestDecodeQuotes_DuplicateTicker(t *testing.T) {
	input := `{"ggal": {"price": 5120.5}, "GGAL": {"price": 5200}}`
	for range 10 {
		_, err := DecodeQuotes(strings.NewReader(input), "ARS")
		require.Error(t, err)
		assert.Equal(t, `quotes "GGAL" and "ggal" are both GGAL`, err.Error())
	}
}

func TestEncodeQuotes_RoundTrip(t *testing.T) {
	quotes := Quotes{
		"GGAL": {Price: ARS(5120.5), DailyChange: pct(1.5), Class: "ACCION"},
		"FCI1": {Price: ARS(1.0234)},
	}
	var b bytes.Buffer
	require.NoError(t, EncodeQuotes(&b, quotes))
	back, err := DecodeQuotes(&b, "ARS")
	require.NoError(t, err)
	require.Len(t, back, len(quotes))
	for ticker, want := range quotes {
		got := back[ticker]
		assert.True(t, want.Price.Equal(got.Price), ticker)
		assert.Equal(t, want.DailyChange, got.DailyChange, ticker)
		assert.Equal(t, want.Class, got.Class, ticker)
	}
}

func TestDecodeRates(t *testing.T) {
	input := `{"date":"2025-01-10","rate":1100}
{"fecha":"2025-01-01","venta":"1.000,50"}
`
	rates, err := DecodeRates(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, rates.Len())

	r, ok := rates.AsOf(date.New(2025, 1, 5))
	require.True(t, ok)
	assert.True(t, r.Equal(R(1000.5)))

	day, last := rates.Latest()
	assert.Equal(t, date.New(2025, 1, 10), day)
	assert.True(t, last.Equal(R(1100)))
}

func TestDecodeRates_RejectsNonPositive(t *testing.T) {
	_, err := DecodeRates(strings.NewReader(`{"date":"2025-01-10","rate":0}`))
	assert.ErrorContains(t, err, "must be positive")
}

func TestDecodeFundPrices(t *testing.T) {
	input := `{"date":"2025-03-07","fund":"alpha","vcp":"104,00"}
{"fecha":"2025-03-10","fci":"ALPHA","price":105}
`
	prices, err := DecodeFundPrices(strings.NewReader(input), "ARS")
	require.NoError(t, err)
	assert.Equal(t, 1, prices.Len())

	on, last, previous := prices.asOf("ALPHA", date.New(2025, 3, 12))
	assert.Equal(t, date.New(2025, 3, 10), on)
	assert.True(t, last.Equal(decimal.NewFromInt(105)))
	assert.True(t, previous.Equal(decimal.NewFromInt(104)))
}

func TestDecodeFundPrices_Errors(t *testing.T) {
	_, err := DecodeFundPrices(strings.NewReader(`{"date":"2025-03-07","vcp":0}`), "ARS")
	assert.ErrorContains(t, err, "line 1")
	assert.ErrorContains(t, err, "missing fund")
	assert.ErrorContains(t, err, "must be positive")
}

func TestDecodeCauciones(t *testing.T) {
	input := `{"start":"2025-03-03","days":7,"capital":20000000,"tna":32}
{"fecha_inicio":"2025-03-10","fecha_fin":"2025-03-11","capital":"1.000.000,00","tna_real":"31,5"}
`
	loans, err := DecodeCauciones(strings.NewReader(input), "ARS")
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, date.New(2025, 3, 10), loans[0].End)
	assert.True(t, loans[0].Capital.Equal(ARS(20_000_000)))
	assert.True(t, loans[0].TNA.Equal(32))
	assert.Equal(t, date.New(2025, 3, 11), loans[1].End)
	assert.True(t, loans[1].Capital.Equal(ARS(1_000_000)))
	assert.True(t, loans[1].TNA.Equal(31.5))
}

func TestDecodeCauciones_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no end", `{"start":"2025-03-03","capital":1}`, "missing end or days"},
		{"no start", `{"end":"2025-03-03","capital":1}`, "missing start"},
		{"no capital", `{"start":"2025-03-03","days":1}`, "capital must be positive"},
		{"backwards", `{"start":"2025-03-03","end":"2025-03-01","capital":1}`, "before it starts"},
		{"bad date", `{"start":"03/03/2025","days":1,"capital":1}`, "invalid date"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCauciones(strings.NewReader(tc.input), "ARS")
			assert.ErrorContains(t, err, "line 1")
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestEncodeRate(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, EncodeRate(&b, date.New(2025, 1, 10), R(1065.5)))
	assert.Equal(t, `{"date":"2025-01-10","rate":"1065.5"}`+"\n", b.String())
}
