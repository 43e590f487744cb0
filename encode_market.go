package cartera

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/etnz/cartera/date"
	"github.com/shopspring/decimal"
)

// Field aliases found in price feeds and exchange rate files.
var (
	quotePriceFields  = []string{"price", "precio", "last", "ultimo"}
	quoteChangeFields = []string{"dailyChangePct", "variacion", "change"}
	quoteClassFields  = []string{"assetClass", "tipo", "class"}
	rateFields        = []string{"rate", "valor", "venta"}
)

// DecodeQuotes reads a JSON object mapping tickers to their latest quote:
//
//	{"GGAL": {"price": 5120.5, "dailyChangePct": -1.2, "assetClass": "ACCION"}}
//
// A missing or zero price is kept as is, it means there is no data. Two keys
// that normalize to the same ticker are an error.
func DecodeQuotes(r io.Reader, currency string) (Quotes, error) {
	var raw map[string]jobject
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("format error in quotes: %w", err)
	}
	quotes := make(Quotes, len(raw))
	keys := make(map[string]string, len(raw))
	for _, ticker := range slices.Sorted(maps.Keys(raw)) {
		q, err := decodeQuote(raw[ticker], currency)
		if err != nil {
			return nil, fmt.Errorf("quote %q: %w", ticker, err)
		}
		normalized := NormalizeTicker(ticker)
		if prev, ok := keys[normalized]; ok {
			return nil, fmt.Errorf("quotes %q and %q are both %s", prev, ticker, normalized)
		}
		keys[normalized] = ticker
		quotes[normalized] = q
	}
	return quotes, nil
}

func decodeQuote(obj jobject, currency string) (Quote, error) {
	price, _, err := obj.decimal(quotePriceFields...)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{Price: M(price, currency)}
	if change, ok, err := obj.decimal(quoteChangeFields...); err != nil {
		return Quote{}, err
	} else if ok {
		p := Percent(change.InexactFloat64())
		q.DailyChange = &p
	}
	class, _, err := obj.string(quoteClassFields...)
	if err != nil {
		return Quote{}, err
	}
	q.Class = AssetClass(class)
	return q, nil
}

// jquote is the canonical form a quote is written in.
type jquote struct {
	Price          decimal.Decimal `json:"price"`
	DailyChangePct *Percent        `json:"dailyChangePct,omitempty"`
	AssetClass     AssetClass      `json:"assetClass,omitempty"`
}

// EncodeQuotes writes quotes as an indented JSON object, tickers sorted.
func EncodeQuotes(w io.Writer, quotes Quotes) error {
	out := make(map[string]jquote, len(quotes))
	for ticker, q := range quotes {
		out[ticker] = jquote{Price: q.Price.Decimal(), DailyChangePct: q.DailyChange, AssetClass: q.Class}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("cannot encode quotes: %w", err)
	}
	return nil
}

// DecodeRates reads a JSONL stream of daily exchange rates:
//
//	{"date": "2025-03-10", "rate": 1065.5}
func DecodeRates(r io.Reader) (*ExchangeRates, error) {
	rates := NewExchangeRates()
	err := decodeLines(r, func(_ int, obj jobject) error {
		s, ok, err := obj.string(dateFields...)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("missing date")
		}
		on, err := date.Parse(s)
		if err != nil {
			return err
		}
		v, ok, err := obj.decimal(rateFields...)
		if err != nil {
			return err
		}
		if !ok || !v.IsPositive() {
			return fmt.Errorf("rate on %s must be positive, got %s", on, v)
		}
		rates.Append(on, R(v))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rates, nil
}

// jrate is the canonical form an exchange rate is written in.
type jrate struct {
	Date date.Date `json:"date"`
	Rate Rate      `json:"rate"`
}

// EncodeRate writes a single exchange rate as a JSONL line.
func EncodeRate(w io.Writer, on date.Date, r Rate) error {
	data, err := json.Marshal(jrate{Date: on, Rate: r})
	if err != nil {
		return fmt.Errorf("cannot encode rate: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
