package model

import "encoding/json"

// Selection drives every fetch on the dashboard.
type Selection struct {
	Ticker    string `json:"ticker"`
	Exchange  string `json:"exchange"`
	Screener  string `json:"screener"`
	IntervalA string `json:"intervalA"`
	IntervalB string `json:"intervalB"`
}

// AnalysisSnapshot is the result set of one analyze batch. Its fields are
// replaced together on success and cleared together on failure.
type AnalysisSnapshot struct {
	Selection      Selection         `json:"selection"`
	TickerInfo     json.RawMessage   `json:"tickerInfo,omitempty"`
	Quote          json.RawMessage   `json:"quote,omitempty"`
	RealTimePrice  *RealTimePrice    `json:"realTimePrice,omitempty"`
	InsiderTrading json.RawMessage   `json:"insiderTrading,omitempty"`
	AnalysisA      json.RawMessage   `json:"analysisA,omitempty"`
	AnalysisB      json.RawMessage   `json:"analysisB,omitempty"`
	Historical     *HistoricalPrices `json:"historical,omitempty"`
	NewsSentiment  json.RawMessage   `json:"newsSentiment,omitempty"`
}

// IsEmpty reports whether no slot of the snapshot is populated.
func (s *AnalysisSnapshot) IsEmpty() bool {
	return len(s.TickerInfo) == 0 && len(s.Quote) == 0 && s.RealTimePrice == nil &&
		len(s.InsiderTrading) == 0 && len(s.AnalysisA) == 0 && len(s.AnalysisB) == 0 &&
		s.Historical == nil && len(s.NewsSentiment) == 0
}

type Loading struct {
	Analysis  bool `json:"analysis"`
	Portfolio bool `json:"portfolio"`
	MarketAI  bool `json:"marketAI"`
	Chart     bool `json:"chart"`
}

// ViewState is everything one dashboard session renders.
type ViewState struct {
	Selection        Selection         `json:"selection"`
	Snapshot         AnalysisSnapshot  `json:"snapshot"`
	ResultsAvailable bool              `json:"resultsAvailable"`
	RealTimePrice    *RealTimePrice    `json:"realTimePrice,omitempty"`
	Historical       *HistoricalPrices `json:"-"`
	ChartData        *ChartData        `json:"chartData,omitempty"`
	SelectedUniverse string            `json:"selectedUniverse,omitempty"`
	UniverseTickers  []UniverseTicker  `json:"universeTickers,omitempty"`
	Portfolio        *Portfolio        `json:"portfolio,omitempty"`
	MarketAI         json.RawMessage   `json:"marketAI,omitempty"`
	Loading          Loading           `json:"loading"`
	Error            string            `json:"error,omitempty"`
	Info             string            `json:"info,omitempty"`

	AnalyzeGeneration uint64 `json:"-"`
	PollGeneration    uint64 `json:"-"`
}
