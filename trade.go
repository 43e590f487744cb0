package cartera

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/cartera/date"
)

// ErrUnknownTradeType is returned when a trade type cannot be recognized.
var ErrUnknownTradeType = errors.New("unknown trade type")

// TradeType tells whether a trade adds to or removes from a position.
type TradeType int

const (
	Buy TradeType = iota
	Sell
)

func (t TradeType) String() string {
	switch t {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseTradeType parses a trade type. Spanish broker labels are accepted too.
func ParseTradeType(s string) (TradeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "compra":
		return Buy, nil
	case "sell", "venta":
		return Sell, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTradeType, s)
	}
}

func (t TradeType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TradeType) UnmarshalText(text []byte) error {
	v, err := ParseTradeType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Trade is an immutable record of a buy or a sell.
//
// Quantity is a magnitude, the direction is given by Type. Price is the unit
// price in local currency at execution.
type Trade struct {
	Ticker   string
	Type     TradeType
	Quantity Quantity
	Price    Money
	Date     date.Date
}

// NewTrade returns a trade with a normalized ticker.
func NewTrade(on date.Date, typ TradeType, ticker string, quantity Quantity, price Money) Trade {
	return Trade{
		Ticker:   NormalizeTicker(ticker),
		Type:     typ,
		Quantity: quantity,
		Price:    price,
		Date:     on,
	}
}

// NormalizeTicker returns the canonical form of a ticker.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
