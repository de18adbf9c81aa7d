package controller

import (
	"yanalysis/model"
	"yanalysis/service"

	"github.com/gin-gonic/gin"
)

type UniverseController struct {
	universeService service.UniverseService
}

func NewUniverseController(us service.UniverseService) *UniverseController {
	return &UniverseController{
		universeService: us,
	}
}

func (ctrl *UniverseController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/universes", ctrl.getUniverses)
	router.GET("/insider-trading/universe/:id", ctrl.getInsiderTrading)
}

func (ctrl *UniverseController) getUniverses(c *gin.Context) {
	universes, err := ctrl.universeService.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load universes.")
		return
	}
	respond(c, universes, "")
}

func (ctrl *UniverseController) getInsiderTrading(c *gin.Context) {
	kind := model.InsiderType(c.DefaultQuery("type", string(model.InsiderAll)))

	data, err := ctrl.universeService.InsiderTrading(c.Request.Context(), c.Param("id"), kind)
	if err != nil {
		respondError(c, err, "Failed to load insider trading.")
		return
	}
	respond(c, data, "")
}
