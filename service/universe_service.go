package service

import (
	"context"
	"encoding/json"
	"fmt"

	"yanalysis/customerrors"
	"yanalysis/model"
)

type UniverseAPI interface {
	GetUniverses(ctx context.Context) ([]model.Universe, error)
	GetInsiderTradingUniverse(ctx context.Context, universeID string, kind model.InsiderType) (json.RawMessage, error)
}

type UniverseService interface {
	List(ctx context.Context) ([]model.Universe, error)
	Tickers(ctx context.Context, universeID string) ([]model.UniverseTicker, error)
	InsiderTrading(ctx context.Context, universeID string, kind model.InsiderType) (json.RawMessage, error)
}

type UniverseServiceImpl struct {
	api UniverseAPI
}

func NewUniverseService(api UniverseAPI) UniverseService {
	return &UniverseServiceImpl{api: api}
}

func (s *UniverseServiceImpl) List(ctx context.Context) ([]model.Universe, error) {
	return s.api.GetUniverses(ctx)
}

// Tickers looks up one universe and decodes its embedded ticker list.
func (s *UniverseServiceImpl) Tickers(ctx context.Context, universeID string) ([]model.UniverseTicker, error) {
	if universeID == "" {
		return nil, customerrors.ErrUniverseRequired
	}
	universes, err := s.api.GetUniverses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range universes {
		if universes[i].ID.String() == universeID {
			return universes[i].ParseTickers()
		}
	}
	return nil, fmt.Errorf("%w: %s", customerrors.ErrUnknownUniverse, universeID)
}

func (s *UniverseServiceImpl) InsiderTrading(ctx context.Context, universeID string, kind model.InsiderType) (json.RawMessage, error) {
	if universeID == "" {
		return nil, customerrors.ErrUniverseRequired
	}
	switch kind {
	case "":
		kind = model.InsiderAll
	case model.InsiderAll, model.InsiderBuy, model.InsiderSell:
	default:
		return nil, fmt.Errorf("%w: insider type %q", customerrors.ErrInvalidCriteria, kind)
	}
	return s.api.GetInsiderTradingUniverse(ctx, universeID, kind)
}
