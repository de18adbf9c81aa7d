package middleware

import (
	"context"
	"net/http"
	"strings"

	"yanalysis/service"

	"github.com/danielgtaylor/huma/v2"
)

// DashboardKey holds the session's *service.Dashboard in request contexts.
const DashboardKey = "dashboard"

// HumaSessionMiddleware resolves the dashboard session from the session
// cookie, issuing a fresh cookie when the session is new or expired. A
// session starts polling once its cookie comes back.
func HumaSessionMiddleware(sessions service.SessionService, maxAge int, isProduction bool) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cookieHeader := ctx.Header("Cookie")
		id := ""

		for part := range strings.SplitSeq(cookieHeader, ";") {
			part = strings.TrimSpace(part)
			if after, ok := strings.CutPrefix(part, service.SessionCookie+"="); ok {
				id = after
				break
			}
		}

		resolved, dashboard := sessions.Resolve(id)
		if resolved != id {
			ctx.SetHeader("Set-Cookie", sessionCookie(resolved, maxAge, isProduction).String())
		} else {
			dashboard.Activate()
		}

		ctx = huma.WithValue(ctx, DashboardKey, dashboard)
		next(ctx)
	}
}

// DashboardFrom returns the session dashboard stored by the session middleware.
func DashboardFrom(ctx context.Context) (*service.Dashboard, bool) {
	d, ok := ctx.Value(DashboardKey).(*service.Dashboard)
	return d, ok
}

func sessionCookie(id string, maxAge int, isProduction bool) *http.Cookie {
	return &http.Cookie{
		Name:     service.SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   isProduction,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
