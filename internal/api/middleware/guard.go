package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/lankahomes/storefront/internal/core/domain"
	"github.com/lankahomes/storefront/internal/core/service"
)

// GuardConfig holds the redirect targets of RequireSession.
type GuardConfig struct {
	LoginPath        string
	UnauthorizedPath string
	// Observe, if set, is told every decision with the route path.
	Observe func(route string, d service.Decision)
}

// RequireSession gates a route on the visitor's session. Roles empty
// means any authenticated user.
func RequireSession(cfg GuardConfig, roles ...domain.Role) echo.MiddlewareFunc {
	guard := service.Guard{Roles: roles}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := VisitorFrom(c)
			if v == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "visitor not resolved")
			}

			d := guard.Evaluate(v.Session.State())
			if cfg.Observe != nil {
				cfg.Observe(c.Path(), d)
			}

			switch d {
			case service.DecisionLoading:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusAccepted, map[string]string{"status": "loading"})
			case service.DecisionLogin:
				from := url.QueryEscape(c.Request().URL.RequestURI())
				return c.Redirect(http.StatusFound, cfg.LoginPath+"?from="+from)
			case service.DecisionUnauthorized:
				return c.Redirect(http.StatusFound, cfg.UnauthorizedPath)
			}
			return next(c)
		}
	}
}
