package cartera

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// QuoteExtractor pulls quotes out of a market data document as returned by a
// broker or data vendor API, whatever its layout.
//
// List selects the array of instruments in the document, the other paths are
// evaluated against each instrument. Change and Class are optional.
type QuoteExtractor struct {
	List   string `toml:"list"`
	Ticker string `toml:"ticker"`
	Price  string `toml:"price"`
	Change string `toml:"change"`
	Class  string `toml:"class"`
	// DefaultClass is used for instruments without a class.
	DefaultClass AssetClass `toml:"default_class"`
}

// Extract reads a JSON document and returns the quotes it contains.
// Instruments without a ticker are skipped. A change that is missing or null
// means no data, but a change that is not a number is an error like a bad
// price.
func (e QuoteExtractor) Extract(r io.Reader, currency string) (Quotes, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("format error in market data: %w", err)
	}

	jval, err := jsonpath.Get(e.List, doc)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", e.List, err)
	}
	items, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("%q does not select a list: %T", e.List, jval)
	}

	quotes := make(Quotes, len(items))
	for i, item := range items {
		ticker, err := e.text(e.Ticker, item)
		if err != nil {
			return nil, fmt.Errorf("instrument %d: %w", i, err)
		}
		ticker = NormalizeTicker(ticker)
		if ticker == "" {
			continue
		}
		price, err := e.number(e.Price, item)
		if err != nil {
			return nil, fmt.Errorf("instrument %q: %w", ticker, err)
		}
		q := Quote{Price: M(price, currency), Class: e.DefaultClass}
		if e.Change != "" {
			if jval, err := e.get(e.Change, item); err == nil && jval != nil {
				change, err := toNumber(e.Change, jval)
				if err != nil {
					return nil, fmt.Errorf("instrument %q: %w", ticker, err)
				}
				p := Percent(change.InexactFloat64())
				q.DailyChange = &p
			}
		}
		if e.Class != "" {
			if class, err := e.text(e.Class, item); err == nil && class != "" {
				q.Class = AssetClass(class)
			}
		}
		quotes[ticker] = q
	}
	return quotes, nil
}

// get evaluates path on v, keeping the first answer when there are several.
func (e QuoteExtractor) get(path string, v any) (any, error) {
	jval, err := jsonpath.Get(path, v)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// jsonpath is never clear about whether it returns a list of 1 answer,
	// or a single answer.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, fmt.Errorf("%q has no value", path)
		}
		jval = jlist[0]
	}
	return jval, nil
}

func (e QuoteExtractor) text(path string, v any) (string, error) {
	jval, err := e.get(path, v)
	if err != nil {
		return "", err
	}
	switch s := jval.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(s), nil
	}
}

// number reads a value that can be a JSON number or a string, the way some
// APIs return them.
func (e QuoteExtractor) number(path string, v any) (decimal.Decimal, error) {
	jval, err := e.get(path, v)
	if err != nil {
		return decimal.Zero, err
	}
	return toNumber(path, jval)
}

// toNumber converts a value found at path. null is zero.
func toNumber(path string, jval any) (decimal.Decimal, error) {
	switch n := jval.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		d, err := parseNumber(n)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%q is an invalid number %q: %w", path, n, err)
		}
		return d, nil
	case nil:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("%q is not a number: %v", path, jval)
	}
}
