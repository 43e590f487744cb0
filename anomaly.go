package cartera

import "github.com/etnz/cartera/date"

// AnomalyKind classifies the data problems absorbed during a valuation.
type AnomalyKind int

const (
	// OverSell is a sell of more units than held. The sell was clamped.
	OverSell AnomalyKind = iota
	// MissingPrice is a held ticker without a usable quote. It is valued at 0.
	MissingPrice
	// InvalidRate is a current exchange rate that is not strictly positive.
	InvalidRate
	// MissingHistoricalRate is a buy with no exchange rate on or before its date.
	// The current rate was used instead.
	MissingHistoricalRate
)

func (k AnomalyKind) String() string {
	switch k {
	case OverSell:
		return "over-sell"
	case MissingPrice:
		return "missing-price"
	case InvalidRate:
		return "invalid-rate"
	case MissingHistoricalRate:
		return "missing-historical-rate"
	default:
		return "unknown"
	}
}

func (k AnomalyKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Anomaly reports a data-quality issue met while computing a valuation.
// Anomalies never stop the computation.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind"`
	Ticker string      `json:"ticker,omitempty"`
	Date   date.Date   `json:"date,omitzero"`
	Detail string      `json:"detail"`
}
