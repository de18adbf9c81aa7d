package service

import (
	"encoding/json"
	"sync"
	"time"

	"yanalysis/model"
	"yanalysis/util"

	"github.com/jinzhu/copier"
)

// Action is a state transition understood by Reduce.
type Action interface {
	isAction()
}

type SelectionChanged struct{ Selection model.Selection }

// PollBound records the generation of the poll cycle now serving the ticker.
type PollBound struct {
	Ticker     string
	Generation uint64
}

type PriceUpdated struct {
	Ticker     string
	Generation uint64
	Quote      model.PriceQuote
	FetchedAt  time.Time
}

type PriceFailed struct {
	Ticker     string
	Generation uint64
	Message    string
}

type ValidationFailed struct{ Message string }

type AnalyzeStarted struct{ Generation uint64 }

type AnalyzeSucceeded struct {
	Generation uint64
	Snapshot   model.AnalysisSnapshot
}

type AnalyzeFailed struct {
	Generation uint64
	Message    string
}

type ChartLoading struct{}

// HistoricalLoaded replaces the charted series, e.g. after a period switch.
type HistoricalLoaded struct {
	Ticker     string
	Historical *model.HistoricalPrices
}

type ChartFailed struct{ Message string }

type UniverseSelected struct {
	UniverseID string
	Tickers    []model.UniverseTicker
}

type PortfolioStarted struct{}

type PortfolioBuilt struct{ Portfolio *model.Portfolio }

type PortfolioFailed struct{ Message string }

type MarketAIStarted struct{}

type MarketAILoaded struct{ MarketAI json.RawMessage }

type MarketAIFailed struct{ Message string }

type ErrorDismissed struct{}

func (SelectionChanged) isAction() {}
func (PollBound) isAction()        {}
func (PriceUpdated) isAction()     {}
func (PriceFailed) isAction()      {}
func (ValidationFailed) isAction() {}
func (AnalyzeStarted) isAction()   {}
func (AnalyzeSucceeded) isAction() {}
func (AnalyzeFailed) isAction()    {}
func (ChartLoading) isAction()     {}
func (HistoricalLoaded) isAction() {}
func (ChartFailed) isAction()      {}
func (UniverseSelected) isAction() {}
func (PortfolioStarted) isAction() {}
func (PortfolioBuilt) isAction()   {}
func (PortfolioFailed) isAction()  {}
func (MarketAIStarted) isAction()  {}
func (MarketAILoaded) isAction()   {}
func (MarketAIFailed) isAction()   {}
func (ErrorDismissed) isAction()   {}

const (
	msgNoPortfolio    = "No Portfolio at this time."
	msgNoMarketAI     = "No Market AI at this time."
	msgPriceFetchFail = "Failed to fetch real-time ticker data."
)

// Reduce is the only place ViewState changes.
func Reduce(s model.ViewState, a Action) model.ViewState {
	switch a := a.(type) {
	case SelectionChanged:
		if a.Selection.Ticker != s.Selection.Ticker || a.Selection.Exchange != s.Selection.Exchange {
			s.RealTimePrice = nil
		}
		s.Selection = a.Selection

	case PollBound:
		s.PollGeneration = a.Generation

	case PriceUpdated:
		// A response for a ticker that is no longer selected, or from a
		// cancelled cycle, must not overwrite the current price.
		if a.Ticker != s.Selection.Ticker || a.Generation != s.PollGeneration {
			return s
		}
		s.RealTimePrice = &model.RealTimePrice{
			Ticker:    a.Ticker,
			Price:     a.Quote.Price,
			Timestamp: a.Quote.Timestamp,
			FetchedAt: a.FetchedAt.UnixMilli(),
		}

	case PriceFailed:
		if a.Ticker != s.Selection.Ticker || a.Generation != s.PollGeneration {
			return s
		}
		s.Error = a.Message

	case ValidationFailed:
		s.Error = a.Message

	case AnalyzeStarted:
		s.AnalyzeGeneration = a.Generation
		s.Loading.Analysis = true
		s.Error = ""

	case AnalyzeSucceeded:
		if a.Generation != s.AnalyzeGeneration {
			return s
		}
		s.Snapshot = a.Snapshot
		s.Historical = a.Snapshot.Historical
		s.ChartData = util.GetChartData(a.Snapshot.Historical, a.Snapshot.Selection.Ticker)
		if a.Snapshot.RealTimePrice != nil && a.Snapshot.Selection.Ticker == s.Selection.Ticker {
			s.RealTimePrice = a.Snapshot.RealTimePrice
		}
		s.ResultsAvailable = true
		s.Loading.Analysis = false

	case AnalyzeFailed:
		if a.Generation != s.AnalyzeGeneration {
			return s
		}
		s.Snapshot = model.AnalysisSnapshot{}
		s.Historical = nil
		s.ChartData = nil
		s.RealTimePrice = nil
		s.ResultsAvailable = false
		s.Loading.Analysis = false
		s.Error = a.Message

	case ChartLoading:
		s.Loading.Chart = true

	case HistoricalLoaded:
		s.Loading.Chart = false
		if a.Ticker != s.Selection.Ticker {
			return s
		}
		s.Historical = a.Historical
		s.ChartData = util.GetChartData(a.Historical, a.Ticker)

	case ChartFailed:
		s.Loading.Chart = false
		s.Error = a.Message

	case UniverseSelected:
		if a.UniverseID != s.SelectedUniverse {
			s.Portfolio = nil
		}
		s.SelectedUniverse = a.UniverseID
		s.UniverseTickers = a.Tickers

	case PortfolioStarted:
		s.Loading.Portfolio = true
		s.Error = ""
		s.Info = ""

	case PortfolioBuilt:
		s.Loading.Portfolio = false
		s.Portfolio = a.Portfolio
		if a.Portfolio == nil || len(a.Portfolio.Tickers) == 0 {
			s.Info = msgNoPortfolio
		}

	case PortfolioFailed:
		s.Loading.Portfolio = false
		s.Portfolio = nil
		s.Error = a.Message

	case MarketAIStarted:
		s.Loading.MarketAI = true
		s.Error = ""

	case MarketAILoaded:
		s.Loading.MarketAI = false
		s.MarketAI = a.MarketAI
		if isEmptyJSON(a.MarketAI) {
			s.Info = msgNoMarketAI
		}

	case MarketAIFailed:
		s.Loading.MarketAI = false
		s.MarketAI = nil
		s.Error = a.Message

	case ErrorDismissed:
		s.Error = ""
		s.Info = ""
	}
	return s
}

func isEmptyJSON(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", `""`, "{}", "[]":
		return true
	}
	return false
}

// DashboardStore owns one session's ViewState. Dispatch is the single writer.
type DashboardStore struct {
	mu    sync.RWMutex
	state model.ViewState
}

func NewDashboardStore(initial model.Selection) *DashboardStore {
	return &DashboardStore{state: model.ViewState{Selection: initial}}
}

func (s *DashboardStore) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
}

// State returns a deep copy that callers may keep or mutate.
func (s *DashboardStore) State() model.ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out model.ViewState
	if err := copier.CopyWithOption(&out, &s.state, copier.Option{DeepCopy: true}); err != nil {
		return s.state
	}
	return out
}

// Selection is a cheap read of the current selection.
func (s *DashboardStore) Selection() model.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Selection
}
