package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"yanalysis/customerrors"
	"yanalysis/model"
)

// fakeBackend answers every analytics call a dashboard session makes.
type fakeBackend struct {
	fakeAnalysisAPI
	prices *fakePriceFetcher

	mu           sync.Mutex
	portfolio    *model.Portfolio
	portfolioErr error
	universes    []model.Universe
	ta           *model.TechnicalAnalysis
	taInterval   string
	marketAI     json.RawMessage
	chatContext  map[string]any
	chatResets   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		prices: newFakePriceFetcher(),
		universes: []model.Universe{
			{ID: "1", Name: "Tech", Tickers: `{"tickers":[{"ticker":"AAPL","exchange":"NASDAQ"},{"ticker":"MSFT","exchange":"NASDAQ"}]}`},
			{ID: "2", Name: "Empty", Tickers: ""},
		},
	}
}

func (f *fakeBackend) GetRealTimePrice(ctx context.Context, ticker, exchange string) (*model.PriceQuote, error) {
	return f.prices.GetRealTimePrice(ctx, ticker, exchange)
}

func (f *fakeBackend) GetVolatility(ctx context.Context, ticker string, period model.Period, interval string) (*model.Volatility, error) {
	return &model.Volatility{ClosingPrices: []float64{1, 2}, Dates: []string{string(period), interval}}, nil
}

func (f *fakeBackend) GetTechnicalAnalysisTA(ctx context.Context, ticker, interval string) (*model.TechnicalAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taInterval = interval
	return f.ta, nil
}

func (f *fakeBackend) GetMACD(ctx context.Context, ticker string, period model.Period) (json.RawMessage, error) {
	return json.RawMessage(`{"macd":[1]}`), nil
}

func (f *fakeBackend) GetMarketAI(ctx context.Context) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.marketAI, nil
}

func (f *fakeBackend) BuildPortfolio(ctx context.Context, criteria model.ScreenCriteria) (*model.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.portfolio, f.portfolioErr
}

func (f *fakeBackend) GetUniverses(ctx context.Context) ([]model.Universe, error) {
	return f.universes, nil
}

func (f *fakeBackend) GetInsiderTradingUniverse(ctx context.Context, universeID string, kind model.InsiderType) (json.RawMessage, error) {
	return json.RawMessage(`{"universe":"` + universeID + `","type":"` + string(kind) + `"}`), nil
}

func (f *fakeBackend) GetFearAndGreed(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"score":55}`), nil
}

func (f *fakeBackend) GetNasdaqStatus(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"isOpen":true}`), nil
}

func (f *fakeBackend) GetFmpQuote(ctx context.Context, ticker string) (*model.FmpQuote, error) {
	if ticker == "BAD" {
		return nil, errors.New("unknown symbol")
	}
	return &model.FmpQuote{Symbol: ticker, Price: 100.456, Change: 1, ChangesPercentage: 1.004, PreviousClose: 99.4}, nil
}

func (f *fakeBackend) Chat(ctx context.Context, message string, chatContext map[string]any) (*model.ChatReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatContext = chatContext
	return &model.ChatReply{Response: "echo: " + message}, nil
}

func (f *fakeBackend) ResetChat(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatResets++
	return nil
}

func newTestDashboard(t *testing.T, backend *fakeBackend, sel model.Selection) *Dashboard {
	t.Helper()
	d := NewDashboard(backend, NewUniverseService(backend), DashboardOptions{
		DefaultSelection: sel,
		PollInterval:     time.Hour,
		HistoricalPeriod: model.Period10y,
	})
	t.Cleanup(d.Close)
	return d
}

func strPtr(s string) *string { return &s }

func TestNewDashboardPollsOnceActivated(t *testing.T) {
	backend := newFakeBackend()
	backend.prices.price["SPY"] = 500
	d := newTestDashboard(t, backend, model.Selection{Ticker: "SPY", Exchange: "AMEX"})

	if _, active := d.poller.Polling(); active {
		t.Fatal("new dashboard polls before activation")
	}

	d.Activate()
	d.Activate()
	waitFor(t, "initial price", func() bool { return d.State().RealTimePrice != nil })
	if gen := d.State().PollGeneration; gen != 1 {
		t.Fatalf("generation = %d, want one bind", gen)
	}
}

func TestClosedDashboardNeverPolls(t *testing.T) {
	backend := newFakeBackend()
	d := newTestDashboard(t, backend, model.Selection{Ticker: "SPY", Exchange: "AMEX"})
	d.Close()

	d.Activate()
	if err := d.SetSelection(context.Background(), model.SelectionRequest{Ticker: strPtr("QQQ")}); err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	if _, active := d.poller.Polling(); active {
		t.Fatal("closed dashboard started polling")
	}
}

func TestConcurrentSelectionsKeepPollerInStep(t *testing.T) {
	backend := newFakeBackend()
	d := newTestDashboard(t, backend, model.Selection{Ticker: "SPY", Exchange: "AMEX"})
	d.Activate()

	for round := 0; round < 200; round++ {
		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func(ticker string) {
				defer wg.Done()
				if err := d.SetSelection(context.Background(), model.SelectionRequest{Ticker: &ticker}); err != nil {
					t.Errorf("SetSelection: %v", err)
				}
			}(fmt.Sprintf("T%d", j))
		}
		wg.Wait()

		polled, _ := d.poller.Polling()
		if selected := d.store.Selection().Ticker; polled != selected {
			t.Fatalf("round %d: selection=%s poller bound to %s", round, selected, polled)
		}
	}
}

func TestSetSelectionRebindsOnTickerChange(t *testing.T) {
	backend := newFakeBackend()
	d := newTestDashboard(t, backend, model.Selection{Ticker: "SPY", Exchange: "AMEX", IntervalA: "15m"})
	d.Activate()
	waitFor(t, "SPY fetch", func() bool { return backend.prices.callsFor("SPY") == 1 })

	if err := d.SetSelection(context.Background(), model.SelectionRequest{IntervalA: strPtr("5m")}); err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if backend.prices.callsFor("SPY") != 1 {
		t.Fatal("interval change rebound the poller")
	}

	if err := d.SetSelection(context.Background(), model.SelectionRequest{Ticker: strPtr(" QQQ "), Exchange: strPtr("NASDAQ")}); err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	waitFor(t, "QQQ fetch", func() bool { return backend.prices.callsFor("QQQ") == 1 })

	sel := d.State().Selection
	if sel.Ticker != "QQQ" || sel.IntervalA != "5m" {
		t.Fatalf("selection = %+v", sel)
	}

	if err := d.SetSelection(context.Background(), model.SelectionRequest{Ticker: strPtr("")}); err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	if _, active := d.poller.Polling(); active {
		t.Fatal("poller active with empty ticker")
	}
}

func TestSetSelectionWithAnalyze(t *testing.T) {
	backend := newFakeBackend()
	d := newTestDashboard(t, backend, model.Selection{IntervalA: "15m", IntervalB: "1d"})

	err := d.SetSelection(context.Background(), model.SelectionRequest{Ticker: strPtr("AAPL"), Analyze: true})
	if err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	if s := d.State(); !s.ResultsAvailable || s.Snapshot.Selection.Ticker != "AAPL" {
		t.Fatalf("state = %+v", s)
	}
}

func TestSelectUniverse(t *testing.T) {
	backend := newFakeBackend()
	d := newTestDashboard(t, backend, model.Selection{})

	if err := d.SelectUniverse(context.Background(), "1"); err != nil {
		t.Fatalf("SelectUniverse: %v", err)
	}
	s := d.State()
	if s.SelectedUniverse != "1" || len(s.UniverseTickers) != 2 || s.UniverseTickers[1].Ticker != "MSFT" {
		t.Fatalf("state = %+v", s)
	}

	if err := d.SelectUniverse(context.Background(), "2"); err != nil {
		t.Fatalf("SelectUniverse empty: %v", err)
	}
	if got := d.State().UniverseTickers; len(got) != 0 {
		t.Fatalf("tickers = %v", got)
	}

	if err := d.SelectUniverse(context.Background(), "99"); !errors.Is(err, customerrors.ErrUnknownUniverse) {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildPortfolio(t *testing.T) {
	backend := newFakeBackend()
	backend.portfolio = &model.Portfolio{Interval1: "15m", Interval2: "1d", Tickers: []model.PortfolioTicker{{Ticker: "AAPL"}}}
	d := newTestDashboard(t, backend, model.Selection{})

	err := d.BuildPortfolio(context.Background(), model.DefaultScreenCriteria(""))
	if !errors.Is(err, customerrors.ErrUniverseRequired) {
		t.Fatalf("err = %v", err)
	}

	if err := d.SelectUniverse(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}
	if err := d.BuildPortfolio(context.Background(), model.DefaultScreenCriteria("")); err != nil {
		t.Fatalf("BuildPortfolio: %v", err)
	}
	if p := d.State().Portfolio; p == nil || len(p.Tickers) != 1 {
		t.Fatalf("portfolio = %+v", p)
	}

	var buf bytes.Buffer
	if err := d.ExportPortfolioCSV(&buf); err != nil {
		t.Fatalf("ExportPortfolioCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Interval1,15m,Interval2,1d,Stocks,1") {
		t.Errorf("csv = %q", buf.String())
	}

	backend.mu.Lock()
	backend.portfolioErr = errors.New("boom")
	backend.mu.Unlock()
	if err := d.BuildPortfolio(context.Background(), model.DefaultScreenCriteria("1")); err == nil {
		t.Fatal("expected error")
	}
	s := d.State()
	if s.Portfolio != nil || s.Error != MsgPortfolioFail {
		t.Fatalf("portfolio=%v error=%q", s.Portfolio, s.Error)
	}
	if err := d.ExportPortfolioCSV(&buf); !errors.Is(err, customerrors.ErrNoPortfolio) {
		t.Fatalf("export without portfolio: %v", err)
	}
}

func TestLoadHistoricalRecomputesChart(t *testing.T) {
	backend := newFakeBackend()
	d := newTestDashboard(t, backend, model.Selection{Ticker: "AAPL"})

	if err := d.LoadHistorical(context.Background(), "7y"); !errors.Is(err, customerrors.ErrInvalidPeriod) {
		t.Fatalf("err = %v", err)
	}
	if err := d.LoadHistorical(context.Background(), model.Period1mo); err != nil {
		t.Fatalf("LoadHistorical: %v", err)
	}
	cd := d.State().ChartData
	if cd == nil || cd.Period != model.Period1mo || len(cd.Labels) != 1 {
		t.Fatalf("chart = %+v", cd)
	}
}

func TestChartCallsNeedTicker(t *testing.T) {
	d := newTestDashboard(t, newFakeBackend(), model.Selection{})
	if _, err := d.LoadMACD(context.Background(), model.Period1y); !errors.Is(err, customerrors.ErrTickerRequired) {
		t.Fatalf("LoadMACD err = %v", err)
	}
	if _, err := d.LoadVolatility(context.Background(), model.Period1y, ""); !errors.Is(err, customerrors.ErrTickerRequired) {
		t.Fatalf("LoadVolatility err = %v", err)
	}
}

func TestExportIndicatorsUsesSlotInterval(t *testing.T) {
	backend := newFakeBackend()
	backend.ta = &model.TechnicalAnalysis{IndicatorsList: map[string]map[string]any{
		"2024-01-02": {"RSI": 55.5},
	}}
	d := newTestDashboard(t, backend, model.Selection{Ticker: "AAPL", IntervalA: "15m", IntervalB: "1d"})

	var buf bytes.Buffer
	if err := d.ExportIndicators(context.Background(), &buf, "b"); err != nil {
		t.Fatalf("ExportIndicators: %v", err)
	}
	if backend.taInterval != "1d" || !strings.HasPrefix(buf.String(), "timestamp,RSI") {
		t.Fatalf("interval=%q csv=%q", backend.taInterval, buf.String())
	}
	if err := d.ExportIndicators(context.Background(), &buf, "c"); !customerrors.IsValidation(err) {
		t.Fatalf("bad slot err = %v", err)
	}
}

func TestRefreshMarketAI(t *testing.T) {
	backend := newFakeBackend()
	backend.marketAI = json.RawMessage(`{"summary":"calm"}`)
	d := newTestDashboard(t, backend, model.Selection{})

	if err := d.RefreshMarketAI(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s := d.State(); string(s.MarketAI) != `{"summary":"calm"}` || s.Loading.MarketAI {
		t.Fatalf("state = %+v", s)
	}
}
