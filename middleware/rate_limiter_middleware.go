package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	localCache "yanalysis/cache"
	"yanalysis/config"
	"yanalysis/model"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humagin"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	rateLimitMessage = "Too many requests. Please wait 5 seconds before trying again."
	rateLimitError   = "Rate limit exceeded"
)

// limiterFor returns the per-IP limiter shared by the gin and huma routes.
func limiterFor(ip string) *rate.Limiter {
	if val, found := localCache.RateLimiterCache.Get(ip); found {
		return val.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rate.Limit(2), 10)
	localCache.RateLimiterCache.Set(ip, limiter, cache.DefaultExpiration)
	return limiter
}

// RateLimiter throttles the routes that fan out to the analytics backend.
// An analyze call alone issues eight upstream requests.
func RateLimiter(cfg *config.ConfigManager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !cfg.GetConfig().RateLimiter {
			ctx.Next()
			return
		}

		if !limiterFor(ctx.ClientIP()).Allow() {
			ctx.Header("Retry-After", "5")
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": rateLimitMessage,
				"error":   rateLimitError,
			})
			return
		}

		ctx.Next()
	}
}

// HumaRateLimiter applies the same per-IP budget to huma operations such as
// chat and the market AI refresh.
func HumaRateLimiter(cfg *config.ConfigManager) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !cfg.GetConfig().RateLimiter {
			next(ctx)
			return
		}

		if !limiterFor(humagin.Unwrap(ctx).ClientIP()).Allow() {
			ctx.SetHeader("Retry-After", "5")
			ctx.SetHeader("Content-Type", "application/json")
			ctx.SetStatus(http.StatusTooManyRequests)
			json.NewEncoder(ctx.BodyWriter()).Encode(model.Response{
				Success: false,
				Message: rateLimitMessage,
				Error:   rateLimitError,
			})
			return
		}

		next(ctx)
	}
}

func RecoveryMiddleware(c *gin.Context) {
	defer func() {
		if err := recover(); err != nil {
			log.Error().
				Interface("panic", err).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("PANIC_RECOVERED")

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
				"error":   "unexpected_panic",
			})
		}
	}()
	c.Next()
}

// quietPaths are polled by the browser and would drown the log.
var quietPaths = map[string]bool{
	"/api/health":          true,
	"/api/dashboard/state": true,
	"/api/market/rotator":  true,
}

func ZerologMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if quietPaths[path] {
			c.Next()
			return
		}

		start := time.Now()
		query := c.Request.URL.RawQuery

		c.Next()

		evt := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = log.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP Request")
	}
}
