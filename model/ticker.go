package model

import (
	"bytes"
	"encoding/json"
)

// Timestamp is a date as the backend serializes it: an ISO/RFC string, or
// epoch milliseconds when the series went through a dataframe encoder.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = Timestamp(n.String())
	return nil
}

// HistoricalPrice is one OHLCV row as returned by the backend. Daily series
// carry Date, intraday series carry Datetime.
type HistoricalPrice struct {
	Date     Timestamp `json:"Date,omitempty"`
	Datetime Timestamp `json:"Datetime,omitempty"`
	Open     float64   `json:"Open,omitempty"`
	High     float64   `json:"High,omitempty"`
	Low      float64   `json:"Low,omitempty"`
	Close    float64   `json:"Close"`
	Volume   float64   `json:"Volume"`
}

// HistoricalPrices pairs a series with the period it was requested for.
type HistoricalPrices struct {
	Data   []HistoricalPrice `json:"data"`
	Period Period            `json:"period"`
}

// PriceQuote is the backend's real-time price payload.
type PriceQuote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// FmpQuote is the daily quote shown by the ticker rotator.
type FmpQuote struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	Change            float64 `json:"change"`
	ChangesPercentage float64 `json:"changesPercentage"`
	PreviousClose     float64 `json:"previousClose"`
}

// RealTimePrice is the price shown for the currently selected ticker.
// FetchedAt is epoch milliseconds.
type RealTimePrice struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
	FetchedAt int64   `json:"fetchedAt"`
}

type Volatility struct {
	ClosingPrices     []float64       `json:"closing_prices"`
	PercentageChanges []float64       `json:"percentage_changes"`
	Dates             []string        `json:"dates"`
	ChangeSummary     json.RawMessage `json:"change_summary,omitempty"`
}

// TechnicalAnalysis is the vendor B (ta) result. IndicatorsList is keyed by
// bar timestamp, then by indicator name.
type TechnicalAnalysis struct {
	Ticker         string                    `json:"ticker"`
	Interval       string                    `json:"interval"`
	Timestamp      string                    `json:"timestamp"`
	IndicatorsList map[string]map[string]any `json:"indicators_list"`
}

// ChartData is a chart-library agnostic rendering of a HistoricalPrices series.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	Period   Period    `json:"period"`
}

type Dataset struct {
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	Fill        bool      `json:"fill"`
	BorderColor string    `json:"borderColor"`
	Tension     float64   `json:"tension"`
	YAxisID     string    `json:"yAxisID"`
}
