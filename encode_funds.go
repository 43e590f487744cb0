package cartera

import (
	"errors"
	"fmt"
	"io"

	"github.com/etnz/cartera/date"
)

var (
	fundFields      = []string{"fund", "fci", "ticker"}
	unitValueFields = []string{"price", "vcp"}
)

// DecodeFundPrices reads a JSONL stream of published fund unit values:
//
//	{"date": "2025-03-10", "fund": "ALPHA", "vcp": 105.2}
//
// Prices are read in the given local currency.
func DecodeFundPrices(r io.Reader, currency string) (*FundPrices, error) {
	prices := NewFundPrices()
	err := decodeLines(r, func(_ int, obj jobject) error {
		var errs []error
		var on date.Date
		s, ok, err := obj.string(dateFields...)
		if err != nil {
			errs = append(errs, err)
		} else if !ok {
			errs = append(errs, errors.New("missing date"))
		} else if on, err = date.Parse(s); err != nil {
			errs = append(errs, err)
		}

		fund, ok, err := obj.string(fundFields...)
		if err != nil {
			errs = append(errs, err)
		} else if !ok || NormalizeTicker(fund) == "" {
			errs = append(errs, errors.New("missing fund"))
		}

		v, ok, err := obj.decimal(unitValueFields...)
		if err != nil {
			errs = append(errs, err)
		} else if !ok || !v.IsPositive() {
			errs = append(errs, fmt.Errorf("unit value must be positive, got %s", v))
		}
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
		prices.Append(fund, on, M(v, currency))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prices, nil
}

var (
	loanStartFields = []string{"start", "fecha_inicio"}
	loanEndFields   = []string{"end", "fecha_fin"}
	loanDaysFields  = []string{"days", "dias"}
	capitalFields   = []string{"capital"}
	tnaFields       = []string{"tna", "tna_real"}
)

// DecodeCauciones reads a JSONL stream of repo loans, one per line:
//
//	{"start": "2025-03-03", "days": 7, "capital": 20000000, "tna": 32}
//
// The end of a loan is given either as a date or as a number of days.
func DecodeCauciones(r io.Reader, currency string) ([]Caucion, error) {
	var loans []Caucion
	err := decodeLines(r, func(_ int, obj jobject) error {
		var errs []error
		day := func(aliases []string) (date.Date, bool) {
			s, ok, err := obj.string(aliases...)
			if err != nil {
				errs = append(errs, err)
				return date.Date{}, false
			}
			if !ok {
				return date.Date{}, false
			}
			on, err := date.Parse(s)
			if err != nil {
				errs = append(errs, err)
				return date.Date{}, false
			}
			return on, true
		}

		start, ok := day(loanStartFields)
		if !ok && len(errs) == 0 {
			errs = append(errs, errors.New("missing start"))
		}
		end, ok := day(loanEndFields)
		if !ok {
			if n, found, err := obj.decimal(loanDaysFields...); err != nil {
				errs = append(errs, err)
			} else if !found || !n.IsPositive() {
				errs = append(errs, errors.New("missing end or days"))
			} else {
				end = start.Add(int(n.IntPart()))
			}
		}

		capital, ok, err := obj.decimal(capitalFields...)
		if err != nil {
			errs = append(errs, err)
		} else if !ok || !capital.IsPositive() {
			errs = append(errs, fmt.Errorf("capital must be positive, got %s", capital))
		}
		tna, _, err := obj.decimal(tnaFields...)
		if err != nil {
			errs = append(errs, err)
		}
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
		if !end.After(start) {
			return fmt.Errorf("loan ends on %s, before it starts on %s", end, start)
		}
		loans = append(loans, Caucion{Start: start, End: end, Capital: M(capital, currency), TNA: Percent(tna.InexactFloat64())})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loans, nil
}
