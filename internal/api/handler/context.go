package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lankahomes/storefront/internal/api/middleware"
	"github.com/lankahomes/storefront/internal/api/visitor"
)

// ctxVisitor returns the visitor attached by the Visitor middleware. A
// missing visitor means the route was mounted outside that middleware.
func ctxVisitor(c echo.Context) (*visitor.Visitor, error) {
	v := middleware.VisitorFrom(c)
	if v == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "visitor not resolved")
	}
	return v, nil
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// safeRedirect keeps post-login redirects on this site. Anything that is
// not a local absolute path becomes "/".
func safeRedirect(from, loginPath string) string {
	if from == "" || from[0] != '/' || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return "/"
	}
	path := from
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if strings.TrimRight(path, "/") == strings.TrimRight(loginPath, "/") {
		return "/"
	}
	return from
}
