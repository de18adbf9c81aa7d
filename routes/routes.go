package routes

import (
	"time"

	"yanalysis/client"
	"yanalysis/config"
	"yanalysis/controller"
	"yanalysis/middleware"
	"yanalysis/model"
	"yanalysis/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humagin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const analyzeTimeout = 2 * time.Minute

// SetupRouter wires clients, services and controllers. The returned func
// stops the market scheduler and closes every dashboard session.
func SetupRouter(cfg *config.SystemConfigs) (*gin.Engine, func()) {
	r := gin.New()
	cfgManager := config.NewConfigManager(cfg.Config)
	isProduction := cfg.Config.Environment == "production"

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.ZerologMiddleware())
	r.Use(middleware.CORS(cfgManager))

	// --- 1. Clients ---
	analyticsClient := client.NewAnalyticsClient(cfg.Config.ApiBaseUrl)

	// --- 2. Services ---
	universeSvc := service.NewUniverseService(analyticsClient)
	chatSvc := service.NewChatService(analyticsClient)

	dashboardOpts := service.DashboardOptions{
		DefaultSelection: model.Selection{
			Ticker:    cfg.Config.DefaultTicker,
			Exchange:  cfg.Config.DefaultExchange,
			Screener:  cfg.Config.DefaultScreener,
			IntervalA: cfg.Config.ShortInterval,
			IntervalB: cfg.Config.LongInterval,
		},
		PollInterval:     cfg.PollInterval(),
		HistoricalPeriod: model.Period(cfg.Config.HistoricalPeriod),
		AiEnabled:        cfg.Config.AiEnabled,
	}
	sessionSvc := service.NewSessionService(cfg.SessionTTL(), func() *service.Dashboard {
		return service.NewDashboard(analyticsClient, universeSvc, dashboardOpts)
	})

	marketSvc := service.NewMarketService(analyticsClient, service.MarketOptions{
		MarketCron:     cfg.Config.MarketCron,
		RotatorCron:    cfg.Config.RotatorCron,
		EnableRotator:  cfg.Config.EnableRotator,
		EnableMarketAI: cfg.Config.EnableMarketAI,
		RotatorTickers: cfg.Config.RotatorTickers,
	})
	if err := marketSvc.Start(); err != nil {
		log.Error().Err(err).Msg("market scheduler not started")
	}

	// --- 3. Middleware ---
	maxAge := int(cfg.SessionTTL().Seconds())
	sessionMw := middleware.SessionMiddleware(sessionSvc, maxAge, isProduction)
	humaSessionMw := middleware.HumaSessionMiddleware(sessionSvc, maxAge, isProduction)
	limiter := middleware.RateLimiter(cfgManager)
	humaLimiter := middleware.HumaRateLimiter(cfgManager)

	// --- 4. Routes & Controllers ---
	api := r.Group("/api")
	{
		controller.NewHealthController(sessionSvc).RegisterRoutes(api)
		controller.NewDashboardController(analyzeTimeout).RegisterRoutes(api, sessionMw, limiter)
		controller.NewUniverseController(universeSvc).RegisterRoutes(api)
	}

	humaAPI := humagin.New(r, huma.DefaultConfig("Y-Analysis API", "1.0.0"))
	controller.NewConfigController(cfgManager).RegisterRoutes(humaAPI)
	controller.NewMarketController(marketSvc, cfgManager, humaLimiter).RegisterRoutes(humaAPI)
	controller.NewChatController(chatSvc, humaSessionMw, humaLimiter).RegisterRoutes(humaAPI)

	shutdown := func() {
		marketSvc.Stop()
		sessionSvc.Close()
	}
	return r, shutdown
}
