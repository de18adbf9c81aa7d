package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"yanalysis/model"
)

type fakePriceFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	total atomic.Int64
	// block holds fetches for a ticker until the channel is closed or the
	// context is cancelled.
	block map[string]chan struct{}
	price map[string]float64
	err   error
}

func newFakePriceFetcher() *fakePriceFetcher {
	return &fakePriceFetcher{
		calls: map[string]int{},
		block: map[string]chan struct{}{},
		price: map[string]float64{},
	}
}

func (f *fakePriceFetcher) GetRealTimePrice(ctx context.Context, ticker, exchange string) (*model.PriceQuote, error) {
	f.mu.Lock()
	f.calls[ticker]++
	gate := f.block[ticker]
	price := f.price[ticker]
	err := f.err
	f.mu.Unlock()
	f.total.Add(1)

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &model.PriceQuote{Symbol: ticker, Price: price, Timestamp: 1700000000}, nil
}

func (f *fakePriceFetcher) callsFor(ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ticker]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPricePollerFetchesImmediatelyAndOnEveryTick(t *testing.T) {
	fetcher := newFakePriceFetcher()
	fetcher.price["SPY"] = 512.5
	store := NewDashboardStore(model.Selection{Ticker: "SPY", Exchange: "AMEX"})

	poller := NewPricePoller(fetcher, store, 20*time.Millisecond)
	defer poller.Close()
	poller.Bind("SPY", "AMEX")

	waitFor(t, "first price", func() bool { return store.State().RealTimePrice != nil })
	if got := store.State().RealTimePrice.Price; got != 512.5 {
		t.Fatalf("price = %v, want 512.5", got)
	}
	waitFor(t, "periodic fetches", func() bool { return fetcher.callsFor("SPY") >= 3 })

	if ticker, active := poller.Polling(); ticker != "SPY" || !active {
		t.Fatalf("Polling() = %q, %v", ticker, active)
	}
}

func TestPricePollerStaleResponseNeverOverwrites(t *testing.T) {
	fetcher := newFakePriceFetcher()
	gate := make(chan struct{})
	fetcher.block["AAA"] = gate
	fetcher.price["AAA"] = 1
	fetcher.price["BBB"] = 2

	store := NewDashboardStore(model.Selection{Ticker: "AAA"})
	poller := NewPricePoller(fetcher, store, time.Hour)
	defer poller.Close()

	poller.Bind("AAA", "NASDAQ")
	waitFor(t, "AAA fetch in flight", func() bool { return fetcher.callsFor("AAA") == 1 })

	store.Dispatch(SelectionChanged{Selection: model.Selection{Ticker: "BBB"}})
	poller.Bind("BBB", "NYSE")
	waitFor(t, "BBB price", func() bool {
		p := store.State().RealTimePrice
		return p != nil && p.Ticker == "BBB"
	})

	close(gate)
	time.Sleep(30 * time.Millisecond)

	p := store.State().RealTimePrice
	if p == nil || p.Ticker != "BBB" || p.Price != 2 {
		t.Fatalf("RealTimePrice = %+v, want BBB at 2", p)
	}
}

func TestPricePollerStopHaltsFetching(t *testing.T) {
	fetcher := newFakePriceFetcher()
	store := NewDashboardStore(model.Selection{Ticker: "SPY"})
	poller := NewPricePoller(fetcher, store, 10*time.Millisecond)

	poller.Bind("SPY", "AMEX")
	waitFor(t, "some fetches", func() bool { return fetcher.callsFor("SPY") >= 2 })

	poller.Stop()
	after := fetcher.total.Load()
	time.Sleep(50 * time.Millisecond)

	if got := fetcher.total.Load(); got != after {
		t.Fatalf("fetches after Stop: %d -> %d", after, got)
	}
	if _, active := poller.Polling(); active {
		t.Fatal("poller still active after Stop")
	}
}

func TestPricePollerEmptyTickerIsIdle(t *testing.T) {
	fetcher := newFakePriceFetcher()
	store := NewDashboardStore(model.Selection{})
	poller := NewPricePoller(fetcher, store, 10*time.Millisecond)
	defer poller.Close()

	poller.Bind("", "")
	time.Sleep(30 * time.Millisecond)

	if got := fetcher.total.Load(); got != 0 {
		t.Fatalf("fetches for empty ticker = %d, want 0", got)
	}
	if _, active := poller.Polling(); active {
		t.Fatal("poller active for empty ticker")
	}
}

func TestPricePollerFailureKeepsPolling(t *testing.T) {
	fetcher := newFakePriceFetcher()
	fetcher.err = errors.New("boom")
	store := NewDashboardStore(model.Selection{Ticker: "SPY"})
	poller := NewPricePoller(fetcher, store, 10*time.Millisecond)
	defer poller.Close()

	poller.Bind("SPY", "AMEX")
	waitFor(t, "error surfaced", func() bool { return store.State().Error == msgPriceFetchFail })
	waitFor(t, "retries", func() bool { return fetcher.callsFor("SPY") >= 3 })
}
