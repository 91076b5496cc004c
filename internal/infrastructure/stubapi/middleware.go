package stubapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lankahomes/storefront/internal/core/domain"
)

const (
	ctxEmail = "email"
	ctxRole  = "role"
)

// bearer verifies the JWT and puts its claims on the context.
func bearer(auth *AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header")
			}

			claims, err := auth.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ctxEmail, claims.Email)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}

// requireRole answers 403 unless the verified role is one of roles.
func requireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ctxRole).(domain.Role)
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
			}
			return next(c)
		}
	}
}

func callerEmail(c echo.Context) string {
	email, _ := c.Get(ctxEmail).(string)
	return email
}

func callerRole(c echo.Context) domain.Role {
	role, _ := c.Get(ctxRole).(domain.Role)
	return role
}
