package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/lankahomes/storefront/internal/api/docs"
	"github.com/lankahomes/storefront/internal/api/handler"
	"github.com/lankahomes/storefront/internal/api/metrics"
	"github.com/lankahomes/storefront/internal/api/middleware"
	"github.com/lankahomes/storefront/internal/api/visitor"
	"github.com/lankahomes/storefront/internal/core/domain"
	"github.com/lankahomes/storefront/internal/core/ports"
	"github.com/lankahomes/storefront/internal/core/service"
	"github.com/lankahomes/storefront/internal/pkg/config"
)

// RouterDeps is everything NewRouter wires together.
type RouterDeps struct {
	Registry *visitor.Registry
	Session  config.SessionConfig
	// Ready lists the dependencies /health/ready pings.
	Ready  map[string]ports.Pinger
	Logger zerolog.Logger
	// Registerer and Gatherer back the HTTP metrics; prometheus defaults when nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "storefront",
		Subsystem:  "http",
		Registerer: d.Registerer,
	}))

	// --- Health and tooling (no visitor) ---
	health := handler.NewHealthHandler(d.Ready, d.Logger)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Visitor routes ---
	vis := middleware.Visitor(middleware.VisitorConfig{
		Registry:   d.Registry,
		CookieName: d.Session.CookieName,
		Secure:     d.Session.CookieSecure,
		MaxAge:     d.Session.TokenTTL,
	})

	guardCfg := middleware.GuardConfig{
		LoginPath:        d.Session.LoginPath,
		UnauthorizedPath: d.Session.UnauthorizedPath,
		Observe: func(route string, dec service.Decision) {
			metrics.GuardDecisionsTotal.WithLabelValues(route, string(dec)).Inc()
		},
	}
	signedIn := middleware.RequireSession(guardCfg)
	sellers := middleware.RequireSession(guardCfg, domain.RoleSeller, domain.RoleAdmin)
	admins := middleware.RequireSession(guardCfg, domain.RoleAdmin)

	auth := handler.NewAuthHandler(d.Session.LoginPath)
	e.GET(d.Session.LoginPath, auth.LoginView, vis)
	e.POST(d.Session.LoginPath, auth.Login, vis)
	e.POST("/register", auth.Register, vis)
	e.POST("/logout", auth.Logout, vis)
	e.GET("/session", auth.Session, vis)
	e.DELETE("/session/error", auth.ClearError, vis)
	e.GET(d.Session.UnauthorizedPath, auth.Unauthorized, vis)

	listings := handler.NewListingHandler()
	props := e.Group("/properties", vis)
	props.GET("", listings.List)
	props.GET("/featured", listings.Featured)
	props.GET("/:id", listings.Get)

	fav := e.Group("/favorites", vis, signedIn)
	fav.GET("", listings.Favorites)
	fav.POST("/:id", listings.AddFavorite)
	fav.DELETE("/:id", listings.RemoveFavorite)
	fav.GET("/:id/check", listings.IsFavorite)

	mine := e.Group("/my-properties", vis, sellers)
	mine.GET("", listings.MyProperties)
	mine.DELETE("/:id", listings.DeleteMine)

	admin := e.Group("/admin", vis, admins)
	admin.GET("/properties", listings.AdminProperties)
	admin.PUT("/properties/:id/approve", listings.Approve)
	admin.PUT("/properties/:id/reject", listings.Reject)
	admin.GET("/users", listings.AdminUsers)
	admin.PUT("/users/:id/toggle-status", listings.ToggleUser)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
