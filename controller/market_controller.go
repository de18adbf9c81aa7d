package controller

import (
	"context"
	"net/http"

	"yanalysis/config"
	"yanalysis/model"
	"yanalysis/service"

	"github.com/danielgtaylor/huma/v2"
)

type MarketController struct {
	marketService service.MarketService
	cfg           *config.ConfigManager
	limiter       func(huma.Context, func(huma.Context))
}

func NewMarketController(ms service.MarketService, cfg *config.ConfigManager, limiter func(huma.Context, func(huma.Context))) *MarketController {
	return &MarketController{
		marketService: ms,
		cfg:           cfg,
		limiter:       limiter,
	}
}

func (ctrl *MarketController) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-market-board",
		Method:      http.MethodGet,
		Path:        "/api/market/board",
		Summary:     "Market Board",
		Description: "Fear and greed, exchange status, SPY volatility and market AI as last refreshed by the scheduler.",
		Tags:        []string{"Market"},
	}, ctrl.getBoard)

	huma.Register(api, huma.Operation{
		OperationID: "refresh-market-ai",
		Method:      http.MethodPost,
		Path:        "/api/market/ai/refresh",
		Summary:     "Refresh Market AI",
		Middlewares: huma.Middlewares{ctrl.limiter},
		Tags:        []string{"Market"},
	}, ctrl.refreshMarketAI)

	huma.Register(api, huma.Operation{
		OperationID: "get-market-rotator",
		Method:      http.MethodGet,
		Path:        "/api/market/rotator",
		Summary:     "Ticker Rotator Quotes",
		Tags:        []string{"Market"},
	}, ctrl.getRotator)
}

// getBoard falls back to a synchronous refresh before the first scheduled run.
func (ctrl *MarketController) getBoard(ctx context.Context, input *struct{}) (*model.DefaultResponse, error) {
	board, ok := ctrl.marketService.Board()
	if !ok {
		board = ctrl.marketService.RefreshBoard(ctx)
	}
	return NewResponse(board, ""), nil
}

func (ctrl *MarketController) refreshMarketAI(ctx context.Context, input *struct{}) (*model.DefaultResponse, error) {
	if !ctrl.cfg.GetConfig().EnableMarketAI {
		return nil, huma.Error404NotFound("Market AI is disabled")
	}
	ai, err := ctrl.marketService.RefreshMarketAI(ctx)
	if err != nil {
		return nil, humaError(err, service.MsgMarketAIFail)
	}
	if len(ai) == 0 || string(ai) == "null" || string(ai) == "{}" {
		return NewResponse(ai, "No Market AI at this time."), nil
	}
	return NewResponse(ai, "Market AI refreshed"), nil
}

func (ctrl *MarketController) getRotator(ctx context.Context, input *struct{}) (*model.DefaultResponse, error) {
	if !ctrl.cfg.GetConfig().EnableRotator {
		return nil, huma.Error404NotFound("Ticker rotator is disabled")
	}
	quotes, ok := ctrl.marketService.Rotator()
	if !ok {
		quotes = ctrl.marketService.RefreshRotator(ctx)
	}
	return NewResponse(quotes, ""), nil
}
