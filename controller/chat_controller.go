package controller

import (
	"context"
	"net/http"

	"yanalysis/middleware"
	"yanalysis/model"
	"yanalysis/service"

	"github.com/danielgtaylor/huma/v2"
)

type ChatController struct {
	chatService service.ChatService
	sessionMw   func(huma.Context, func(huma.Context))
	limiter     func(huma.Context, func(huma.Context))
}

func NewChatController(cs service.ChatService, sessionMw, limiter func(huma.Context, func(huma.Context))) *ChatController {
	return &ChatController{
		chatService: cs,
		sessionMw:   sessionMw,
		limiter:     limiter,
	}
}

func (ctrl *ChatController) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "chat",
		Method:      http.MethodPost,
		Path:        "/api/chat",
		Summary:     "Chat With The Analyst",
		Description: "Sends the message together with the session's ticker info and portfolio.",
		// limiter unwraps the gin context, so it runs before sessionMw wraps it.
		Middlewares: huma.Middlewares{ctrl.limiter, ctrl.sessionMw},
		Tags:        []string{"Chat"},
	}, ctrl.chat)

	huma.Register(api, huma.Operation{
		OperationID: "reset-chat",
		Method:      http.MethodDelete,
		Path:        "/api/chat/reset",
		Summary:     "Reset Chat",
		Tags:        []string{"Chat"},
	}, ctrl.reset)
}

func (ctrl *ChatController) chat(ctx context.Context, input *model.ChatInput) (*model.DefaultResponse, error) {
	var state *model.ViewState
	if d, ok := middleware.DashboardFrom(ctx); ok {
		s := d.State()
		state = &s
	}

	reply, err := ctrl.chatService.Send(ctx, input.Body.Message, state)
	if err != nil {
		return nil, humaError(err, "Chat - Server error, please try again later.")
	}
	return NewResponse(reply, ""), nil
}

func (ctrl *ChatController) reset(ctx context.Context, input *struct{}) (*model.DefaultResponse, error) {
	if err := ctrl.chatService.Reset(ctx); err != nil {
		return nil, humaError(err, "Failed to reset chat.")
	}
	return NewResponse(nil, "Chat reset"), nil
}
