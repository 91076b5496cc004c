// Package stubapi is a small marketplace backend for local runs and
// integration tests. It speaks the same JSON as the real API: HS256 tokens
// with sub=email and an uppercase role claim.
package stubapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/lankahomes/storefront/internal/core/domain"
)

// Config seeds and signs the stub.
type Config struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	// SkipListings leaves the catalogue empty.
	SkipListings bool
}

const (
	DefaultAdminEmail    = "admin@lankahomes.lk"
	DefaultAdminPassword = "admin123"
)

// Server is the stub backend. Routes live under /api.
type Server struct {
	echo     *echo.Echo
	Auth     *AuthService
	Accounts *Accounts
	Catalog  *Catalog
}

func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Server, error) {
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = DefaultAdminEmail
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = DefaultAdminPassword
	}

	accounts := NewAccounts()
	catalog := NewCatalog()
	auth := NewAuthService(accounts, cfg.JWTSecret, cfg.TokenTTL)

	if _, err := auth.Seed(ctx, RegisterInput{
		FirstName: "Site",
		LastName:  "Admin",
		Email:     cfg.AdminEmail,
		Password:  cfg.AdminPassword,
	}, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if !cfg.SkipListings {
		seedListings(ctx, catalog, cfg.AdminEmail)
	}

	s := &Server{Auth: auth, Accounts: accounts, Catalog: catalog}
	s.echo = s.routes(&handlers{auth: auth, accounts: accounts, catalog: catalog, logger: logger})
	return s, nil
}

// Handler returns the HTTP handler to serve.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) routes(h *handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{AllowOrigins: []string{"*"}}))

	api := e.Group("/api")
	authed := bearer(h.auth)
	sellers := requireRole(domain.RoleSeller, domain.RoleAdmin)

	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)
	api.GET("/auth/validate", h.validate, authed)

	api.GET("/properties", h.listProperties)
	api.GET("/properties/search", h.searchProperties)
	api.GET("/properties/filter", h.filterProperties)
	api.GET("/properties/featured", h.featuredProperties)
	api.GET("/properties/my-properties", h.myProperties, authed, sellers)
	api.GET("/properties/:id", h.getProperty)
	api.DELETE("/properties/:id", h.deleteProperty, authed, sellers)

	fav := api.Group("/favorites", authed)
	fav.GET("", h.favorites)
	fav.POST("/:id", h.addFavorite)
	fav.DELETE("/:id", h.removeFavorite)
	fav.GET("/:id/check", h.checkFavorite)

	admin := api.Group("/admin", authed, requireRole(domain.RoleAdmin))
	admin.GET("/properties", h.adminProperties)
	admin.PUT("/properties/:id/approve", h.moderate(domain.StatusApproved))
	admin.PUT("/properties/:id/reject", h.moderate(domain.StatusRejected))
	admin.GET("/users", h.adminUsers)
	admin.PUT("/users/:id/toggle-status", h.toggleUser)

	return e
}
