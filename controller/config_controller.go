package controller

import (
	"context"
	"net/http"

	"yanalysis/config"
	"yanalysis/model"

	"github.com/danielgtaylor/huma/v2"
)

type ConfigController struct {
	cfg *config.ConfigManager
}

func NewConfigController(cfg *config.ConfigManager) *ConfigController {
	return &ConfigController{
		cfg: cfg,
	}
}

func (ctrl *ConfigController) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard-config",
		Method:      http.MethodGet,
		Path:        "/api/dashboard/config",
		Summary:     "Get Dashboard Defaults",
		Description: "Default selection, feature flags and the period and interval choices the dashboard offers.",
		Tags:        []string{"Config"},
	}, ctrl.getClientConfig)
}

func (ctrl *ConfigController) getClientConfig(ctx context.Context, input *struct{}) (*model.DefaultResponse, error) {
	cfg := ctrl.cfg.GetConfig().ClientConfig()
	return NewResponse(cfg, "Client config fetch success"), nil
}
