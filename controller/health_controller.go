package controller

import (
	"net/http"

	"yanalysis/service"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	sessions service.SessionService
}

func NewHealthController(sessions service.SessionService) *HealthController {
	return &HealthController{sessions: sessions}
}

// RegisterRoutes sets up the health check endpoint under the /api group
func (ctrl *HealthController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", ctrl.healthCheck)
	router.HEAD("/health", ctrl.healthCheck)
}

// healthCheck reports liveness. GET also returns the open session count.
func (ctrl *HealthController) healthCheck(c *gin.Context) {
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	respond(c, gin.H{"sessions": ctrl.sessions.Count()}, "OK")
}
