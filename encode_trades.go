package cartera

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/etnz/cartera/date"
)

// Field aliases found in trade stores.
var (
	tickerFields   = []string{"ticker", "symbol", "especie"}
	quantityFields = []string{"quantity", "cantidad"}
	priceFields    = []string{"price", "precio"}
	typeFields     = []string{"type", "tipo"}
	dateFields     = []string{"date", "fecha", "tradeDate"}
)

// DecodeTrades reads a JSONL stream of trades, one trade per line.
//
// Prices are read in the given local currency. Malformed trades are rejected
// here, with the line they were found on.
func DecodeTrades(r io.Reader, currency string) ([]Trade, error) {
	trades := make([]Trade, 0, 256)
	err := decodeLines(r, func(_ int, obj jobject) error {
		tx, err := decodeTrade(obj, currency)
		if err != nil {
			return err
		}
		trades = append(trades, tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trades, nil
}

func decodeTrade(obj jobject, currency string) (Trade, error) {
	var errs []error
	ticker, ok, err := obj.string(tickerFields...)
	if err != nil {
		errs = append(errs, err)
	} else if !ok || NormalizeTicker(ticker) == "" {
		errs = append(errs, errors.New("missing ticker"))
	}

	var typ TradeType
	if s, ok, err := obj.string(typeFields...); err != nil {
		errs = append(errs, err)
	} else if !ok {
		errs = append(errs, errors.New("missing trade type"))
	} else if typ, err = ParseTradeType(s); err != nil {
		errs = append(errs, err)
	}

	quantity, ok, err := obj.decimal(quantityFields...)
	if err != nil {
		errs = append(errs, err)
	} else if !ok || !quantity.IsPositive() {
		errs = append(errs, fmt.Errorf("quantity must be positive, got %s", quantity))
	}

	price, ok, err := obj.decimal(priceFields...)
	if err != nil {
		errs = append(errs, err)
	} else if !ok || price.IsNegative() {
		errs = append(errs, fmt.Errorf("price must be set and not negative, got %s", price))
	}

	var on date.Date
	if s, ok, err := obj.string(dateFields...); err != nil {
		errs = append(errs, err)
	} else if !ok {
		errs = append(errs, errors.New("missing trade date"))
	} else if on, err = date.Parse(s); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return Trade{}, errors.Join(errs...)
	}
	return NewTrade(on, typ, ticker, Q(quantity), M(price, currency)), nil
}

// jtrade is the canonical form a trade is written in.
type jtrade struct {
	Date     date.Date `json:"date"`
	Type     TradeType `json:"type"`
	Ticker   string    `json:"ticker"`
	Quantity Quantity  `json:"quantity"`
	Price    Quantity  `json:"price"` // a bare number, the currency is the file's one
}

// EncodeTrade writes a single trade as a JSONL line in canonical form.
func EncodeTrade(w io.Writer, tx Trade) error {
	data, err := json.Marshal(jtrade{
		Date:     tx.Date,
		Type:     tx.Type,
		Ticker:   tx.Ticker,
		Quantity: tx.Quantity,
		Price:    Q(tx.Price.Decimal()),
	})
	if err != nil {
		return fmt.Errorf("cannot encode trade: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
