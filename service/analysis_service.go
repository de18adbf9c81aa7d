package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"yanalysis/customerrors"
	"yanalysis/model"
	"yanalysis/validator"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// AnalysisAPI is the slice of the analytics backend one analyze batch needs.
type AnalysisAPI interface {
	GetTickerInfo(ctx context.Context, ticker string) (json.RawMessage, error)
	GetQuote(ctx context.Context, ticker string) (json.RawMessage, error)
	GetRealTimePrice(ctx context.Context, ticker, exchange string) (*model.PriceQuote, error)
	GetInsiderTradingTicker(ctx context.Context, ticker string, kind model.InsiderType) (json.RawMessage, error)
	GetTechnicalAnalysisTV(ctx context.Context, ticker, exchange, screener, interval string, ai bool) (json.RawMessage, error)
	GetHistoricalData(ctx context.Context, ticker string, period model.Period) (*model.HistoricalPrices, error)
	GetNewsSentiment(ctx context.Context, ticker string) (json.RawMessage, error)
}

type AnalysisOptions struct {
	HistoricalPeriod model.Period
	AiEnabled        bool
}

// AnalysisService fires the fixed analyze batch for the current selection
// and commits the results all-or-nothing. A newer Analyze cancels the batch
// still in flight, and the reducer drops commits from superseded generations.
type AnalysisService struct {
	api   AnalysisAPI
	store *DashboardStore
	opts  AnalysisOptions

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewAnalysisService(api AnalysisAPI, store *DashboardStore, opts AnalysisOptions) *AnalysisService {
	if opts.HistoricalPeriod == "" {
		opts.HistoricalPeriod = model.Period10y
	}
	return &AnalysisService{
		api:   api,
		store: store,
		opts:  opts,
	}
}

// Analyze validates the selection before any network call. The returned
// error is informational; the outcome is always reflected in the store.
func (s *AnalysisService) Analyze(ctx context.Context) error {
	sel := s.store.Selection()
	if err := validator.ValidateSelection(&sel); err != nil {
		s.store.Dispatch(ValidationFailed{Message: err.Error()})
		return err
	}

	ctx, gen, done := s.begin(ctx)
	defer done()

	start := time.Now()
	snapshot, err := s.fetchBatch(ctx, sel)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			log.Info().Str("ticker", sel.Ticker).Uint64("generation", gen).Msg("analyze superseded")
		} else {
			log.Error().Err(err).Str("ticker", sel.Ticker).Uint64("generation", gen).Msg("analyze failed")
		}
		s.store.Dispatch(AnalyzeFailed{
			Generation: gen,
			Message:    customerrors.UserMessage(err, MsgAnalyzeFail),
		})
		return err
	}

	s.store.Dispatch(AnalyzeSucceeded{Generation: gen, Snapshot: *snapshot})
	log.Info().Str("ticker", sel.Ticker).Uint64("generation", gen).Dur("took", time.Since(start)).Msg("analyze committed")
	return nil
}

// begin supersedes the previous batch. AnalyzeStarted is dispatched under the
// lock so a cancelled batch can never commit after its successor started.
func (s *AnalysisService) begin(parent context.Context) (context.Context, uint64, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.store.Dispatch(AnalyzeStarted{Generation: gen})

	return ctx, gen, func() {
		cancel()
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
	}
}

// Cancel aborts the batch in flight, if any.
func (s *AnalysisService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *AnalysisService) fetchBatch(ctx context.Context, sel model.Selection) (*model.AnalysisSnapshot, error) {
	snap := model.AnalysisSnapshot{Selection: sel}
	var quote *model.PriceQuote

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.TickerInfo, err = s.api.GetTickerInfo(gctx, sel.Ticker)
		return err
	})
	g.Go(func() (err error) {
		snap.Quote, err = s.api.GetQuote(gctx, sel.Ticker)
		return err
	})
	g.Go(func() (err error) {
		quote, err = s.api.GetRealTimePrice(gctx, sel.Ticker, sel.Exchange)
		return err
	})
	g.Go(func() (err error) {
		snap.InsiderTrading, err = s.api.GetInsiderTradingTicker(gctx, sel.Ticker, model.InsiderAll)
		return err
	})
	g.Go(func() (err error) {
		snap.AnalysisA, err = s.api.GetTechnicalAnalysisTV(gctx, sel.Ticker, sel.Exchange, sel.Screener, sel.IntervalA, s.opts.AiEnabled)
		return err
	})
	g.Go(func() (err error) {
		snap.AnalysisB, err = s.api.GetTechnicalAnalysisTV(gctx, sel.Ticker, sel.Exchange, sel.Screener, sel.IntervalB, s.opts.AiEnabled)
		return err
	})
	g.Go(func() (err error) {
		snap.Historical, err = s.api.GetHistoricalData(gctx, sel.Ticker, s.opts.HistoricalPeriod)
		return err
	})
	g.Go(func() (err error) {
		snap.NewsSentiment, err = s.api.GetNewsSentiment(gctx, sel.Ticker)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if quote != nil {
		snap.RealTimePrice = &model.RealTimePrice{
			Ticker:    sel.Ticker,
			Price:     quote.Price,
			Timestamp: quote.Timestamp,
			FetchedAt: time.Now().UnixMilli(),
		}
	}
	return &snap, nil
}
