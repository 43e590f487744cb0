package cartera

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_String(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{USDm(1234.5), "$1,234.50"},
		{USDm(0.004), "$0.00"},
		{USDm(-12), "-$12.00"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.m.String())
	}
	assert.Equal(t, "-", ARS(0).SignedString())
	assert.Equal(t, "+"+ARS(5).String(), ARS(5).SignedString())
}

func TestMoney_CurrencyMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { ARS(1).Add(USDm(1)) })
	// The empty currency is weak.
	assert.Equal(t, "ARS", ARS(1).Add(M(1, "")).Currency())
}

func TestMoney_Guards(t *testing.T) {
	assert.True(t, ARS(10).Div(Q(0)).IsZero())
	assert.True(t, ARS(10).Ratio(ARS(0)).IsZero())
	assert.True(t, ARS(10).Ratio(ARS(4)).Equal(decimal.NewFromFloat(2.5)))
	assert.Zero(t, percentOf(ARS(10), ARS(0)))
	assert.True(t, percentOf(ARS(1), ARS(8)).Equal(12.5))
}

func TestMoney_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(ARS(1520.456))
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"ARS","amount":"1520.46"}`, string(data))
}

func TestRate(t *testing.T) {
	r := R(1250)
	assert.True(t, r.IsValid())
	assert.False(t, R(0).IsValid())
	assert.False(t, R(-1).IsValid())
	assert.True(t, r.ToUSD(ARS(2500)).Equal(USDm(2)))
	assert.True(t, r.ToLocal(USDm(2), "ARS").Equal(ARS(2500)))
	assert.True(t, R(0).ToUSD(ARS(2500)).IsZero())
	assert.True(t, impliedRate(ARS(2500), USDm(2)).Equal(r))
	assert.False(t, impliedRate(ARS(2500), USDm(0)).IsValid())
}

func TestParse(t *testing.T) {
	q, err := ParseQuantity("1.250,5")
	require.NoError(t, err)
	assert.True(t, q.Equal(Q(1250.5)))
	r, err := ParseRate(" 1065.25 ")
	require.NoError(t, err)
	assert.True(t, r.Equal(R(1065.25)))
	_, err = ParseRate("n/a")
	assert.ErrorContains(t, err, "invalid rate")
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "12.35%", Percent(12.346).String())
	assert.Equal(t, "+1.50%", Percent(1.5).SignedString())
	assert.Equal(t, "-", Percent(0.001).SignedString())
	assert.True(t, Percent(2.5).Fraction().Equal(decimal.NewFromFloat(0.025)))
}

func TestParseTradeType(t *testing.T) {
	for in, want := range map[string]TradeType{"buy": Buy, "BUY": Buy, " compra ": Buy, "sell": Sell, "Venta": Sell} {
		got, err := ParseTradeType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseTradeType("short")
	assert.ErrorIs(t, err, ErrUnknownTradeType)
}
