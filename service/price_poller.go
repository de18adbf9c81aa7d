package service

import (
	"context"
	"sync"
	"time"

	"yanalysis/model"

	"github.com/rs/zerolog/log"
)

type PriceFetcher interface {
	GetRealTimePrice(ctx context.Context, ticker, exchange string) (*model.PriceQuote, error)
}

// Dispatcher receives state transitions.
type Dispatcher interface {
	Dispatch(Action)
}

// PricePoller keeps the real-time price of one bound ticker fresh. Each Bind
// starts a new generation and cancels the previous cycle together with its
// in-flight request.
type PricePoller struct {
	fetcher  PriceFetcher
	sink     Dispatcher
	interval time.Duration

	mu     sync.Mutex
	gen    uint64
	ticker string
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPricePoller(fetcher PriceFetcher, sink Dispatcher, interval time.Duration) *PricePoller {
	return &PricePoller{
		fetcher:  fetcher,
		sink:     sink,
		interval: interval,
	}
}

// Bind moves the poller to Polling for ticker, or to Idle when ticker is
// empty. The first fetch is issued immediately.
func (p *PricePoller) Bind(ticker, exchange string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelLocked()
	p.gen++
	gen := p.gen
	p.ticker = ticker
	p.sink.Dispatch(PollBound{Ticker: ticker, Generation: gen})

	if ticker == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	go p.loop(ctx, done, ticker, exchange, gen)
}

// Stop cancels the current cycle and waits for its loop to exit. No fetch
// starts after Stop returns.
func (p *PricePoller) Stop() {
	p.mu.Lock()
	done := p.done
	p.cancelLocked()
	p.gen++
	p.ticker = ""
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (p *PricePoller) Close() {
	p.Stop()
}

// Polling reports the bound ticker and whether a cycle is active.
func (p *PricePoller) Polling() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticker, p.cancel != nil
}

func (p *PricePoller) cancelLocked() {
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel, p.done = nil, nil
}

func (p *PricePoller) loop(ctx context.Context, done chan struct{}, ticker, exchange string, gen uint64) {
	defer close(done)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	p.poll(ctx, ticker, exchange, gen)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.poll(ctx, ticker, exchange, gen)
		}
	}
}

func (p *PricePoller) poll(ctx context.Context, ticker, exchange string, gen uint64) {
	if ctx.Err() != nil {
		return
	}

	quote, err := p.fetcher.GetRealTimePrice(ctx, ticker, exchange)
	if ctx.Err() != nil {
		// superseded while in flight
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Uint64("generation", gen).Msg("real-time price fetch failed")
		p.sink.Dispatch(PriceFailed{Ticker: ticker, Generation: gen, Message: msgPriceFetchFail})
		return
	}

	p.sink.Dispatch(PriceUpdated{
		Ticker:     ticker,
		Generation: gen,
		Quote:      *quote,
		FetchedAt:  time.Now(),
	})
}
