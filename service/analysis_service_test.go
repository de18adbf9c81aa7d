package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"yanalysis/customerrors"
	"yanalysis/model"
)

type backendError struct{ status, msg string }

func (e *backendError) Error() string         { return e.status }
func (e *backendError) ServerMessage() string { return e.msg }

type fakeAnalysisAPI struct {
	calls atomic.Int64

	mu      sync.Mutex
	failOn  string
	failErr error
	// gate blocks every call for the ticker until closed.
	gate map[string]chan struct{}
}

func (f *fakeAnalysisAPI) hit(ctx context.Context, name, ticker string) error {
	f.calls.Add(1)
	f.mu.Lock()
	gate := f.gate[ticker]
	failOn, failErr := f.failOn, f.failErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if name == failOn {
		return failErr
	}
	return nil
}

func (f *fakeAnalysisAPI) GetTickerInfo(ctx context.Context, ticker string) (json.RawMessage, error) {
	if err := f.hit(ctx, "info", ticker); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"symbol":"` + ticker + `"}`), nil
}

func (f *fakeAnalysisAPI) GetQuote(ctx context.Context, ticker string) (json.RawMessage, error) {
	if err := f.hit(ctx, "quote", ticker); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"price":10}`), nil
}

func (f *fakeAnalysisAPI) GetRealTimePrice(ctx context.Context, ticker, exchange string) (*model.PriceQuote, error) {
	if err := f.hit(ctx, "price", ticker); err != nil {
		return nil, err
	}
	return &model.PriceQuote{Symbol: ticker, Price: 10.5}, nil
}

func (f *fakeAnalysisAPI) GetInsiderTradingTicker(ctx context.Context, ticker string, kind model.InsiderType) (json.RawMessage, error) {
	if err := f.hit(ctx, "insider", ticker); err != nil {
		return nil, err
	}
	return json.RawMessage(`[]`), nil
}

func (f *fakeAnalysisAPI) GetTechnicalAnalysisTV(ctx context.Context, ticker, exchange, screener, interval string, ai bool) (json.RawMessage, error) {
	if err := f.hit(ctx, "tv_"+interval, ticker); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"interval":"` + interval + `"}`), nil
}

func (f *fakeAnalysisAPI) GetHistoricalData(ctx context.Context, ticker string, period model.Period) (*model.HistoricalPrices, error) {
	if err := f.hit(ctx, "historical", ticker); err != nil {
		return nil, err
	}
	return &model.HistoricalPrices{
		Period: period,
		Data:   []model.HistoricalPrice{{Date: "2024-01-02", Close: 10}},
	}, nil
}

func (f *fakeAnalysisAPI) GetNewsSentiment(ctx context.Context, ticker string) (json.RawMessage, error) {
	if err := f.hit(ctx, "news", ticker); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"score":1}`), nil
}

func newTestAnalysis(api AnalysisAPI, sel model.Selection) (*AnalysisService, *DashboardStore) {
	store := NewDashboardStore(sel)
	return NewAnalysisService(api, store, AnalysisOptions{HistoricalPeriod: model.Period10y}), store
}

func TestAnalyzeEmptyTickerMakesNoCalls(t *testing.T) {
	api := &fakeAnalysisAPI{}
	svc, store := newTestAnalysis(api, model.Selection{Ticker: "   "})

	err := svc.Analyze(context.Background())
	if !errors.Is(err, customerrors.ErrTickerRequired) {
		t.Fatalf("err = %v", err)
	}
	if n := api.calls.Load(); n != 0 {
		t.Fatalf("calls = %d, want 0", n)
	}
	if got := store.State().Error; got != "Ticker is required" {
		t.Fatalf("Error = %q", got)
	}
}

func TestAnalyzeSuccessFillsAllSlots(t *testing.T) {
	api := &fakeAnalysisAPI{}
	svc, store := newTestAnalysis(api, model.Selection{Ticker: "AAPL", Exchange: "NASDAQ", IntervalA: "15m", IntervalB: "1d"})

	if err := svc.Analyze(context.Background()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if n := api.calls.Load(); n != 8 {
		t.Fatalf("calls = %d, want 8", n)
	}

	s := store.State()
	snap := s.Snapshot
	if snap.TickerInfo == nil || snap.Quote == nil || snap.RealTimePrice == nil || snap.InsiderTrading == nil ||
		snap.AnalysisA == nil || snap.AnalysisB == nil || snap.Historical == nil || snap.NewsSentiment == nil {
		t.Fatalf("missing slot in %+v", snap)
	}
	if string(snap.AnalysisA) != `{"interval":"15m"}` || string(snap.AnalysisB) != `{"interval":"1d"}` {
		t.Errorf("analysis slots swapped: %s / %s", snap.AnalysisA, snap.AnalysisB)
	}
	if !s.ResultsAvailable || s.ChartData == nil || s.Loading.Analysis {
		t.Errorf("state after success: %+v", s)
	}
}

func TestAnalyzeSingleFailureClearsEverySlot(t *testing.T) {
	api := &fakeAnalysisAPI{}
	svc, store := newTestAnalysis(api, model.Selection{Ticker: "AAPL", IntervalA: "15m", IntervalB: "1d"})
	if err := svc.Analyze(context.Background()); err != nil {
		t.Fatalf("first Analyze: %v", err)
	}

	api.mu.Lock()
	api.failOn = "news"
	api.failErr = &backendError{status: "404 Not Found", msg: "Ticker not found"}
	api.mu.Unlock()

	if err := svc.Analyze(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	s := store.State()
	if !s.Snapshot.IsEmpty() || s.ChartData != nil || s.ResultsAvailable {
		t.Fatalf("partial results kept: %+v", s)
	}
	if s.Error != "Ticker not found" {
		t.Errorf("Error = %q, want server message", s.Error)
	}
}

func TestAnalyzeFallbackMessage(t *testing.T) {
	api := &fakeAnalysisAPI{failOn: "info", failErr: errors.New("connection refused")}
	svc, store := newTestAnalysis(api, model.Selection{Ticker: "AAPL"})

	_ = svc.Analyze(context.Background())
	if got := store.State().Error; got != MsgAnalyzeFail {
		t.Fatalf("Error = %q", got)
	}
}

func TestAnalyzeLastCallWins(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAnalysisAPI{gate: map[string]chan struct{}{"AAA": gate}}
	svc, store := newTestAnalysis(api, model.Selection{Ticker: "AAA"})

	first := make(chan error, 1)
	go func() { first <- svc.Analyze(context.Background()) }()
	waitFor(t, "first batch in flight", func() bool { return api.calls.Load() >= 8 })

	store.Dispatch(SelectionChanged{Selection: model.Selection{Ticker: "BBB"}})
	if err := svc.Analyze(context.Background()); err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	close(gate)
	<-first

	s := store.State()
	if s.Snapshot.Selection.Ticker != "BBB" || s.Error != "" {
		t.Fatalf("snapshot for %q, error %q", s.Snapshot.Selection.Ticker, s.Error)
	}
}
