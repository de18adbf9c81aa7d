package controller

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"yanalysis/middleware"
	"yanalysis/model"
	"yanalysis/service"
	"yanalysis/util"

	"github.com/gin-gonic/gin"
)

const (
	msgExportFail     = "Failed to export data."
	msgVolatilityFail = "Failed to load volatility."

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type DashboardController struct {
	analyzeTimeout time.Duration
}

func NewDashboardController(analyzeTimeout time.Duration) *DashboardController {
	return &DashboardController{analyzeTimeout: analyzeTimeout}
}

// RegisterRoutes mounts /dashboard. Every route runs inside a session;
// routes that fan out to the backend are rate limited.
func (ctrl *DashboardController) RegisterRoutes(router *gin.RouterGroup, session, limiter gin.HandlerFunc) {
	dashboardGroup := router.Group("/dashboard", session)
	{
		dashboardGroup.GET("/state", ctrl.getState)
		dashboardGroup.PUT("/selection", limiter, ctrl.setSelection)
		dashboardGroup.POST("/analyze", limiter, ctrl.analyze)
		dashboardGroup.DELETE("/error", ctrl.dismissError)

		dashboardGroup.GET("/chart", ctrl.getChart)
		dashboardGroup.GET("/macd", ctrl.getMACD)
		dashboardGroup.GET("/volatility", ctrl.getVolatility)

		dashboardGroup.PUT("/universe", ctrl.selectUniverse)
		dashboardGroup.POST("/portfolio", limiter, ctrl.buildPortfolio)
		dashboardGroup.GET("/portfolio.csv", ctrl.exportPortfolioCSV)
		dashboardGroup.GET("/portfolio.xlsx", ctrl.exportPortfolioXLSX)
		dashboardGroup.GET("/indicators.csv", ctrl.exportIndicators)
	}
}

// detached keeps an analyze running when the browser goes away, so the
// session still ends up with a committed result.
func (ctrl *DashboardController) detached(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), ctrl.analyzeTimeout)
}

func (ctrl *DashboardController) getState(c *gin.Context) {
	respond(c, middleware.GinDashboard(c).State(), "")
}

func (ctrl *DashboardController) setSelection(c *gin.Context) {
	var req model.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid Request").Body)
		return
	}

	d := middleware.GinDashboard(c)
	ctx, cancel := ctrl.detached(c)
	defer cancel()

	if err := d.SetSelection(ctx, req); err != nil {
		respondError(c, err, service.MsgAnalyzeFail)
		return
	}
	respond(c, d.State(), "Selection updated")
}

func (ctrl *DashboardController) analyze(c *gin.Context) {
	d := middleware.GinDashboard(c)
	ctx, cancel := ctrl.detached(c)
	defer cancel()

	if err := d.Analyze(ctx); err != nil {
		respondError(c, err, service.MsgAnalyzeFail)
		return
	}
	respond(c, d.State(), "Analysis complete")
}

func (ctrl *DashboardController) dismissError(c *gin.Context) {
	d := middleware.GinDashboard(c)
	d.DismissError()
	respond(c, d.State(), "")
}

func (ctrl *DashboardController) getChart(c *gin.Context) {
	d := middleware.GinDashboard(c)
	period := model.Period(c.DefaultQuery("period", string(model.Period1y)))

	if err := d.LoadHistorical(c.Request.Context(), period); err != nil {
		respondError(c, err, service.MsgHistoricalFail)
		return
	}
	respond(c, d.State().ChartData, "")
}

func (ctrl *DashboardController) getMACD(c *gin.Context) {
	period := model.Period(c.DefaultQuery("period", string(model.Period1y)))

	macd, err := middleware.GinDashboard(c).LoadMACD(c.Request.Context(), period)
	if err != nil {
		respondError(c, err, service.MsgHistoricalFail)
		return
	}
	respond(c, macd, "")
}

func (ctrl *DashboardController) getVolatility(c *gin.Context) {
	period := model.Period(c.DefaultQuery("period", string(model.Period1mo)))
	interval := c.DefaultQuery("interval", "1d")

	v, err := middleware.GinDashboard(c).LoadVolatility(c.Request.Context(), period, interval)
	if err != nil {
		respondError(c, err, msgVolatilityFail)
		return
	}
	respond(c, v, "")
}

func (ctrl *DashboardController) selectUniverse(c *gin.Context) {
	var req model.UniverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid Request").Body)
		return
	}

	d := middleware.GinDashboard(c)
	if err := d.SelectUniverse(c.Request.Context(), req.UniverseID); err != nil {
		respondError(c, err, "Failed to load universe.")
		return
	}
	respond(c, d.State(), "Universe selected")
}

func (ctrl *DashboardController) buildPortfolio(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid Request").Body)
		return
	}

	d := middleware.GinDashboard(c)
	criteria, err := util.DecodeCriteria(body, model.DefaultScreenCriteria(d.State().SelectedUniverse))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()).Body)
		return
	}

	if err := d.BuildPortfolio(c.Request.Context(), criteria); err != nil {
		respondError(c, err, service.MsgPortfolioFail)
		return
	}
	state := d.State()
	respond(c, state.Portfolio, state.Info)
}

func (ctrl *DashboardController) exportPortfolioCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := middleware.GinDashboard(c).ExportPortfolioCSV(&buf); err != nil {
		respondError(c, err, msgExportFail)
		return
	}
	attachment(c, "portfolio.csv", contentTypeCSV, buf.Bytes())
}

func (ctrl *DashboardController) exportPortfolioXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := middleware.GinDashboard(c).ExportPortfolioXLSX(&buf); err != nil {
		respondError(c, err, msgExportFail)
		return
	}
	attachment(c, "portfolio.xlsx", contentTypeXLSX, buf.Bytes())
}

func (ctrl *DashboardController) exportIndicators(c *gin.Context) {
	var buf bytes.Buffer
	if err := middleware.GinDashboard(c).ExportIndicators(c.Request.Context(), &buf, c.DefaultQuery("slot", "a")); err != nil {
		respondError(c, err, msgExportFail)
		return
	}
	attachment(c, "indicators_data.csv", contentTypeCSV, buf.Bytes())
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
