package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"yanalysis/cache"
	"yanalysis/model"

	gocache "github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const notAvailable = "N/A"

type MarketAPI interface {
	GetFearAndGreed(ctx context.Context) (json.RawMessage, error)
	GetNasdaqStatus(ctx context.Context) (json.RawMessage, error)
	GetVolatility(ctx context.Context, ticker string, period model.Period, interval string) (*model.Volatility, error)
	GetMarketAI(ctx context.Context) (json.RawMessage, error)
	GetFmpQuote(ctx context.Context, ticker string) (*model.FmpQuote, error)
}

type MarketService interface {
	Board() (*model.MarketBoard, bool)
	Rotator() ([]model.RotatorQuote, bool)
	RefreshBoard(ctx context.Context) *model.MarketBoard
	RefreshMarketAI(ctx context.Context) (json.RawMessage, error)
	RefreshRotator(ctx context.Context) []model.RotatorQuote
	Start() error
	Stop()
}

type MarketOptions struct {
	MarketCron     string
	RotatorCron    string
	EnableRotator  bool
	EnableMarketAI bool
	RotatorTickers []string
	RequestTimeout time.Duration
}

// MarketServiceImpl keeps the market board and the ticker rotator warm in
// process caches, refreshed on cron schedules shared by every session.
type MarketServiceImpl struct {
	api   MarketAPI
	opts  MarketOptions
	cron  *cron.Cron
	board *gocache.Cache
	quote *gocache.Cache

	mu sync.Mutex
}

func NewMarketService(api MarketAPI, opts MarketOptions) *MarketServiceImpl {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &MarketServiceImpl{
		api:   api,
		opts:  opts,
		cron:  cron.New(),
		board: cache.MarketBoardCache,
		quote: cache.RotatorCache,
	}
}

func (s *MarketServiceImpl) Board() (*model.MarketBoard, bool) {
	v, ok := s.board.Get(cache.MarketBoardKey)
	if !ok {
		return nil, false
	}
	return v.(*model.MarketBoard), true
}

func (s *MarketServiceImpl) Rotator() ([]model.RotatorQuote, bool) {
	v, ok := s.quote.Get(cache.RotatorKey)
	if !ok {
		return nil, false
	}
	return v.([]model.RotatorQuote), true
}

// RefreshBoard loads every board widget concurrently. A failed widget keeps
// its previous value and is reported in Errors.
func (s *MarketServiceImpl) RefreshBoard(ctx context.Context) *model.MarketBoard {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := &model.MarketBoard{}
	if prev, ok := s.Board(); ok {
		*next = *prev
	}
	next.Errors = nil

	var errMu sync.Mutex
	fail := func(widget string, err error) {
		log.Warn().Err(err).Str("widget", widget).Msg("market board refresh failed")
		errMu.Lock()
		next.Errors = append(next.Errors, widget)
		errMu.Unlock()
	}

	var (
		fearAndGreed, nasdaq, marketAI json.RawMessage
		volatility                     *model.Volatility
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.api.GetFearAndGreed(gctx)
		if err != nil {
			fail("fearAndGreed", err)
			return nil
		}
		fearAndGreed = v
		return nil
	})
	g.Go(func() error {
		v, err := s.api.GetNasdaqStatus(gctx)
		if err != nil {
			fail("nasdaqStatus", err)
			return nil
		}
		nasdaq = v
		return nil
	})
	g.Go(func() error {
		v, err := s.api.GetVolatility(gctx, "SPY", model.Period5d, "1d")
		if err != nil {
			fail("spyVolatility", err)
			return nil
		}
		volatility = v
		return nil
	})
	if s.opts.EnableMarketAI {
		g.Go(func() error {
			v, err := s.api.GetMarketAI(gctx)
			if err != nil {
				fail("marketAI", err)
				return nil
			}
			marketAI = v
			return nil
		})
	}
	_ = g.Wait()

	if fearAndGreed != nil {
		next.FearAndGreed = fearAndGreed
	}
	if nasdaq != nil {
		next.NasdaqStatus = nasdaq
	}
	if volatility != nil {
		next.SpyVolatility = volatility
	}
	if marketAI != nil {
		next.MarketAI = marketAI
	}
	next.UpdatedAt = time.Now().UnixMilli()

	s.board.Set(cache.MarketBoardKey, next, gocache.NoExpiration)
	return next
}

// RefreshMarketAI forces a market AI reload outside the schedule.
func (s *MarketServiceImpl) RefreshMarketAI(ctx context.Context) (json.RawMessage, error) {
	ai, err := s.api.GetMarketAI(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := &model.MarketBoard{}
	if prev, ok := s.Board(); ok {
		*next = *prev
	}
	next.MarketAI = ai
	next.UpdatedAt = time.Now().UnixMilli()
	s.board.Set(cache.MarketBoardKey, next, gocache.NoExpiration)
	return ai, nil
}

// RefreshRotator quotes the configured tickers in order. A failed quote is
// shown as N/A.
func (s *MarketServiceImpl) RefreshRotator(ctx context.Context) []model.RotatorQuote {
	quotes := make([]model.RotatorQuote, 0, len(s.opts.RotatorTickers))
	for _, ticker := range s.opts.RotatorTickers {
		q, err := s.api.GetFmpQuote(ctx, ticker)
		if err != nil {
			log.Debug().Err(err).Str("ticker", ticker).Msg("rotator quote failed")
			quotes = append(quotes, model.RotatorQuote{
				Ticker:            ticker,
				Price:             notAvailable,
				Change:            notAvailable,
				ChangesPercentage: notAvailable,
				PreviousClose:     notAvailable,
			})
			continue
		}
		quotes = append(quotes, model.RotatorQuote{
			Ticker:            ticker,
			Price:             fixed2(q.Price),
			Change:            fixed2(q.Change),
			ChangesPercentage: fixed2(q.ChangesPercentage),
			PreviousClose:     fixed2(q.PreviousClose),
		})
	}
	s.quote.Set(cache.RotatorKey, quotes, gocache.NoExpiration)
	return quotes
}

func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (s *MarketServiceImpl) job(name string, fn func(ctx context.Context)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
		defer cancel()
		start := time.Now()
		fn(ctx)
		log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("market job done")
	}
}

// Start registers the refresh jobs, runs each once, then starts the cron.
func (s *MarketServiceImpl) Start() error {
	boardJob := s.job("board", func(ctx context.Context) { s.RefreshBoard(ctx) })
	if _, err := s.cron.AddFunc(s.opts.MarketCron, boardJob); err != nil {
		return fmt.Errorf("register market board job: %w", err)
	}

	var rotatorJob func()
	if s.opts.EnableRotator {
		rotatorJob = s.job("rotator", func(ctx context.Context) { s.RefreshRotator(ctx) })
		if _, err := s.cron.AddFunc(s.opts.RotatorCron, rotatorJob); err != nil {
			return fmt.Errorf("register rotator job: %w", err)
		}
	}

	go boardJob()
	if rotatorJob != nil {
		go rotatorJob()
	}

	s.cron.Start()
	log.Info().Str("marketCron", s.opts.MarketCron).Bool("rotator", s.opts.EnableRotator).Msg("market scheduler started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *MarketServiceImpl) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("market scheduler stopped")
}
