package cartera

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// This file contains the helpers shared by the decoders of the files the
// engine is fed with. All of them are JSON based, and all of them accept
// alternate field names for the same attribute (the trade store has been
// filled by several tools over time). Aliases are resolved here, once, so the
// engine only ever sees canonical values.

// jobject is a decoded JSON object whose fields are still raw.
type jobject map[string]json.RawMessage

// lookup returns the raw value of the first alias present in the object.
func (o jobject) lookup(aliases ...string) (json.RawMessage, bool) {
	for _, a := range aliases {
		if raw, ok := o[a]; ok && string(raw) != "null" {
			return raw, true
		}
	}
	return nil, false
}

// string decodes the first alias present as a string.
func (o jobject) string(aliases ...string) (string, bool, error) {
	raw, ok := o.lookup(aliases...)
	if !ok {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", true, fmt.Errorf("field %q: %w", aliases[0], err)
	}
	return s, true, nil
}

// decimal decodes the first alias present as a number. Numbers written as
// strings are accepted, including with a decimal comma.
func (o jobject) decimal(aliases ...string) (decimal.Decimal, bool, error) {
	raw, ok := o.lookup(aliases...)
	if !ok {
		return decimal.Zero, false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		d, err := parseNumber(s)
		if err != nil {
			return decimal.Zero, true, fmt.Errorf("field %q: %w", aliases[0], err)
		}
		return d, true, nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, true, fmt.Errorf("field %q: %w", aliases[0], err)
	}
	return d, true, nil
}

// parseNumber parses numbers as written by humans and local brokers:
// "1234.5", "1234,5" and "1.234,5" are the same number.
func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.TrimSuffix(s, "%")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

// decodeLines calls fn for each non blank line of a JSONL stream, with its
// 1-based line number.
func decodeLines(r io.Reader, fn func(i int, obj jobject) error) error {
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var obj jobject
		if err := json.Unmarshal(line, &obj); err != nil {
			return fmt.Errorf("format error on line %d %q: %w", i, string(line), err)
		}
		if err := fn(i, obj); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	return scanner.Err()
}
