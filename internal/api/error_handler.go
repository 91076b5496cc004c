package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lankahomes/storefront/internal/core/domain"
	"github.com/lankahomes/storefront/internal/infrastructure/apiclient"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Passes backend statuses through with the backend's own message when it sent one.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, validation, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Backend answered with an error status.
	var ae *apiclient.HTTPError
	if errors.As(err, &ae) {
		msg := ae.PublicMessage()
		if msg == "" {
			msg = http.StatusText(ae.StatusCode)
		}
		return ae.StatusCode, msg
	}

	switch {
	case errors.Is(err, apiclient.ErrUnavailable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend unavailable")
		return http.StatusBadGateway, "marketplace service unavailable"
	case errors.Is(err, domain.ErrPropertyNotFound):
		return http.StatusNotFound, "property not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
