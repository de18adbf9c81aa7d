package service

import (
	"context"

	"yanalysis/model"
	"yanalysis/validator"

	"github.com/rs/zerolog/log"
)

type ChatAPI interface {
	Chat(ctx context.Context, message string, chatContext map[string]any) (*model.ChatReply, error)
	ResetChat(ctx context.Context) error
}

type ChatService interface {
	Send(ctx context.Context, message string, state *model.ViewState) (*model.ChatReply, error)
	Reset(ctx context.Context) error
}

type ChatServiceImpl struct {
	api ChatAPI
}

func NewChatService(api ChatAPI) ChatService {
	return &ChatServiceImpl{api: api}
}

// Send forwards the message with the session's ticker info and portfolio as
// context. Blank messages never reach the backend.
func (s *ChatServiceImpl) Send(ctx context.Context, message string, state *model.ViewState) (*model.ChatReply, error) {
	req := model.ChatRequest{Message: message, Context: map[string]any{}}
	if err := validator.ValidateChat(&req); err != nil {
		return nil, err
	}

	if state != nil {
		if state.Snapshot.TickerInfo != nil {
			req.Context["tickerInfo"] = state.Snapshot.TickerInfo
		}
		if state.Portfolio != nil {
			req.Context["portfolio"] = state.Portfolio
		}
	}

	reply, err := s.api.Chat(ctx, req.Message, req.Context)
	if err != nil {
		log.Error().Err(err).Msg("chat request failed")
		return nil, err
	}
	return reply, nil
}

func (s *ChatServiceImpl) Reset(ctx context.Context) error {
	return s.api.ResetChat(ctx)
}
