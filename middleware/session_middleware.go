package middleware

import (
	"context"
	"net/http"

	"yanalysis/service"

	"github.com/gin-gonic/gin"
)

// SessionMiddleware is the gin counterpart of HumaSessionMiddleware.
func SessionMiddleware(sessions service.SessionService, maxAge int, isProduction bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(service.SessionCookie)

		resolved, dashboard := sessions.Resolve(id)
		if resolved != id {
			http.SetCookie(c.Writer, sessionCookie(resolved, maxAge, isProduction))
		} else {
			dashboard.Activate()
		}

		c.Set(DashboardKey, dashboard)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), DashboardKey, dashboard))
		c.Next()
	}
}

// GinDashboard returns the dashboard bound by SessionMiddleware.
func GinDashboard(c *gin.Context) *service.Dashboard {
	return c.MustGet(DashboardKey).(*service.Dashboard)
}
