package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"yanalysis/customerrors"
	"yanalysis/model"
	"yanalysis/util"
	"yanalysis/validator"

	"github.com/rs/zerolog/log"
)

// User-facing failure messages, shared with the HTTP layer.
const (
	MsgAnalyzeFail    = "Analyze - Server error, please try again later."
	MsgPortfolioFail  = "Failed to retrieve portfolio. Please try again later."
	MsgHistoricalFail = "Failed to load historical data."
	MsgMarketAIFail   = "Failed to load Market AI. Please try again later."
)

// DashboardAPI is everything a dashboard session asks the analytics backend.
type DashboardAPI interface {
	AnalysisAPI
	GetVolatility(ctx context.Context, ticker string, period model.Period, interval string) (*model.Volatility, error)
	GetTechnicalAnalysisTA(ctx context.Context, ticker, interval string) (*model.TechnicalAnalysis, error)
	GetMACD(ctx context.Context, ticker string, period model.Period) (json.RawMessage, error)
	GetMarketAI(ctx context.Context) (json.RawMessage, error)
	BuildPortfolio(ctx context.Context, criteria model.ScreenCriteria) (*model.Portfolio, error)
}

type DashboardOptions struct {
	DefaultSelection model.Selection
	PollInterval     time.Duration
	HistoricalPeriod model.Period
	AiEnabled        bool
}

// Dashboard is one browser session: a store, the price poller bound to its
// selection, and the analyze orchestrator.
type Dashboard struct {
	api       DashboardAPI
	universes UniverseService
	store     *DashboardStore
	poller    *PricePoller
	analysis  *AnalysisService

	// mu keeps the stored selection and the poller binding in step.
	mu     sync.Mutex
	active bool
	closed bool
}

func NewDashboard(api DashboardAPI, universes UniverseService, opts DashboardOptions) *Dashboard {
	store := NewDashboardStore(opts.DefaultSelection)
	d := &Dashboard{
		api:       api,
		universes: universes,
		store:     store,
		poller:    NewPricePoller(api, store, opts.PollInterval),
		analysis: NewAnalysisService(api, store, AnalysisOptions{
			HistoricalPeriod: opts.HistoricalPeriod,
			AiEnabled:        opts.AiEnabled,
		}),
	}
	return d
}

// Activate starts polling the selected ticker. A new session stays idle
// until a request returns with its cookie or sets a selection.
func (d *Dashboard) Activate() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active || d.closed {
		return
	}
	d.active = true
	sel := d.store.Selection()
	d.poller.Bind(sel.Ticker, sel.Exchange)
}

// SetSelection applies a partial selection update. A changed ticker or
// exchange rebinds the poller; the request may also trigger an analyze.
func (d *Dashboard) SetSelection(ctx context.Context, req model.SelectionRequest) error {
	d.mu.Lock()
	prev := d.store.Selection()
	next := req.Apply(prev)

	d.store.Dispatch(SelectionChanged{Selection: next})
	if !d.closed && (!d.active || next.Ticker != prev.Ticker || next.Exchange != prev.Exchange) {
		d.active = true
		d.poller.Bind(next.Ticker, next.Exchange)
	}
	d.mu.Unlock()

	if req.Analyze {
		return d.Analyze(ctx)
	}
	return nil
}

func (d *Dashboard) Analyze(ctx context.Context) error {
	return d.analysis.Analyze(ctx)
}

func (d *Dashboard) SelectUniverse(ctx context.Context, universeID string) error {
	tickers, err := d.universes.Tickers(ctx, universeID)
	if err != nil {
		return err
	}
	d.store.Dispatch(UniverseSelected{UniverseID: universeID, Tickers: tickers})
	return nil
}

func (d *Dashboard) BuildPortfolio(ctx context.Context, criteria model.ScreenCriteria) error {
	if criteria.SelectedUniverse == "" {
		criteria.SelectedUniverse = d.store.State().SelectedUniverse
	}
	if err := validator.ValidateCriteria(&criteria); err != nil {
		d.store.Dispatch(ValidationFailed{Message: err.Error()})
		return err
	}

	d.store.Dispatch(PortfolioStarted{})
	portfolio, err := d.api.BuildPortfolio(ctx, criteria)
	if err != nil {
		log.Error().Err(err).Str("universe", criteria.SelectedUniverse).Msg("build portfolio failed")
		d.store.Dispatch(PortfolioFailed{Message: MsgPortfolioFail})
		return err
	}
	d.store.Dispatch(PortfolioBuilt{Portfolio: portfolio})
	return nil
}

// LoadHistorical re-fetches the charted series for another period.
func (d *Dashboard) LoadHistorical(ctx context.Context, period model.Period) error {
	sel, err := d.chartSelection(period)
	if err != nil {
		return err
	}

	d.store.Dispatch(ChartLoading{})
	historical, err := d.api.GetHistoricalData(ctx, sel.Ticker, period)
	if err != nil {
		log.Warn().Err(err).Str("ticker", sel.Ticker).Str("period", string(period)).Msg("historical load failed")
		d.store.Dispatch(ChartFailed{Message: customerrors.UserMessage(err, MsgHistoricalFail)})
		return err
	}
	if historical.Period == "" {
		historical.Period = period
	}
	d.store.Dispatch(HistoricalLoaded{Ticker: sel.Ticker, Historical: historical})
	return nil
}

func (d *Dashboard) LoadMACD(ctx context.Context, period model.Period) (json.RawMessage, error) {
	sel, err := d.chartSelection(period)
	if err != nil {
		return nil, err
	}
	return d.api.GetMACD(ctx, sel.Ticker, period)
}

func (d *Dashboard) LoadVolatility(ctx context.Context, period model.Period, interval string) (*model.Volatility, error) {
	sel, err := d.chartSelection(period)
	if err != nil {
		return nil, err
	}
	if interval == "" {
		interval = "1d"
	}
	return d.api.GetVolatility(ctx, sel.Ticker, period, interval)
}

func (d *Dashboard) chartSelection(period model.Period) (model.Selection, error) {
	if err := validator.ValidatePeriod(period); err != nil {
		return model.Selection{}, err
	}
	sel := d.store.Selection()
	if err := validator.ValidateSelection(&sel); err != nil {
		return model.Selection{}, err
	}
	return sel, nil
}

func (d *Dashboard) RefreshMarketAI(ctx context.Context) error {
	d.store.Dispatch(MarketAIStarted{})
	ai, err := d.api.GetMarketAI(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("market ai load failed")
		d.store.Dispatch(MarketAIFailed{Message: customerrors.UserMessage(err, MsgMarketAIFail)})
		return err
	}
	d.store.Dispatch(MarketAILoaded{MarketAI: ai})
	return nil
}

// ExportIndicators writes the vendor B indicator table for the interval of
// slot "a" or "b" of the current selection.
func (d *Dashboard) ExportIndicators(ctx context.Context, w io.Writer, slot string) error {
	sel := d.store.Selection()
	if err := validator.ValidateSelection(&sel); err != nil {
		return err
	}

	var interval string
	switch slot {
	case "", "a":
		interval = sel.IntervalA
	case "b":
		interval = sel.IntervalB
	default:
		return fmt.Errorf("%w: slot %q", customerrors.ErrInvalidCriteria, slot)
	}

	ta, err := d.api.GetTechnicalAnalysisTA(ctx, sel.Ticker, interval)
	if err != nil {
		return err
	}
	return util.WriteIndicatorsCSV(w, ta)
}

func (d *Dashboard) ExportPortfolioCSV(w io.Writer) error {
	p := d.store.State().Portfolio
	if p == nil {
		return customerrors.ErrNoPortfolio
	}
	return util.WritePortfolioCSV(w, p)
}

func (d *Dashboard) ExportPortfolioXLSX(w io.Writer) error {
	p := d.store.State().Portfolio
	if p == nil {
		return customerrors.ErrNoPortfolio
	}
	return util.WritePortfolioXLSX(w, p)
}

func (d *Dashboard) DismissError() {
	d.store.Dispatch(ErrorDismissed{})
}

func (d *Dashboard) State() model.ViewState {
	return d.store.State()
}

// Close stops the poller and cancels any analyze in flight. A closed
// dashboard never polls again.
func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.analysis.Cancel()
	d.poller.Close()
}
