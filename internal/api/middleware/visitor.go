package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lankahomes/storefront/internal/api/visitor"
)

const visitorKey = "visitor"

// VisitorConfig wires the Visitor middleware.
type VisitorConfig struct {
	Registry   *visitor.Registry
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// Visitor resolves the visitor cookie to a session stack and records the
// request path on its navigator. A navigation recorded between requests
// (a background bootstrap) answers the next request with a 302; one
// recorded by the handler replaces its response unless that response is
// already written, in which case it waits for the next request.
func Visitor(cfg VisitorConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cfg.CookieName); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cfg.CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			v, err := cfg.Registry.Get(id)
			if err != nil {
				return err
			}
			if to, ok := v.Nav.TakeRedirect(); ok && to != c.Request().URL.Path {
				return c.Redirect(http.StatusFound, to)
			}
			v.Nav.Visit(c.Request().URL.RequestURI())
			c.Set(visitorKey, v)

			err = next(c)
			if c.Response().Committed {
				return err
			}
			if to, ok := v.Nav.TakeRedirect(); ok {
				return c.Redirect(http.StatusFound, to)
			}
			return err
		}
	}
}

// VisitorFrom returns the visitor the middleware attached, or nil.
func VisitorFrom(c echo.Context) *visitor.Visitor {
	v, _ := c.Get(visitorKey).(*visitor.Visitor)
	return v
}
