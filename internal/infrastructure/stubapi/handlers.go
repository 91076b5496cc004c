package stubapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lankahomes/storefront/internal/core/domain"
)

type handlers struct {
	auth     *AuthService
	accounts *Accounts
	catalog  *Catalog
	logger   zerolog.Logger
}

type authRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

type authResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Message   string `json:"message"`
}

func failure(c echo.Context, status int, msg string) error {
	return c.JSON(status, authResponse{Success: false, Message: msg})
}

// register answers with token, email and role only; clients fill in the
// names they submitted.
func (h *handlers) register(c echo.Context) error {
	var req authRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid payload")
	}

	token, acct, err := h.auth.Register(c.Request().Context(), RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Role:      req.Role,
	})
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return failure(c, http.StatusBadRequest, "Email already exists!")
	case errors.Is(err, errAllFieldsRequired):
		return failure(c, http.StatusBadRequest, "All fields are required!")
	case err != nil:
		h.logger.Error().Err(err).Msg("register failed")
		return failure(c, http.StatusInternalServerError, domain.MsgRegistrationFailed)
	}

	return c.JSON(http.StatusOK, authResponse{
		Success: true,
		Token:   token,
		Email:   acct.Email,
		Role:    acct.Role.Wire(),
		Message: "Registration successful!",
	})
}

func (h *handlers) login(c echo.Context) error {
	var req authRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid payload")
	}

	token, acct, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, errCredentialsRequired):
		return failure(c, http.StatusBadRequest, "Email and password are required!")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return failure(c, http.StatusBadRequest, "Invalid email or password!")
	case errors.Is(err, domain.ErrAccountDisabled):
		return failure(c, http.StatusBadRequest, "Account is deactivated!")
	case err != nil:
		h.logger.Error().Err(err).Msg("login failed")
		return failure(c, http.StatusInternalServerError, domain.MsgLoginFailed)
	}

	return c.JSON(http.StatusOK, authResponse{
		Success:   true,
		Token:     token,
		Email:     acct.Email,
		Role:      acct.Role.Wire(),
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		Message:   "Login successful!",
	})
}

func (h *handlers) validate(c echo.Context) error {
	return c.JSON(http.StatusOK, authResponse{
		Success: true,
		Email:   callerEmail(c),
		Role:    callerRole(c).Wire(),
		Message: "Token is valid",
	})
}

// --- Listings ---

func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	return page, size
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func approved(p domain.Property) bool { return p.Status == domain.StatusApproved }

func (h *handlers) listProperties(c echo.Context) error {
	page, size := pageParams(c)
	items := h.catalog.Query(c.Request().Context(), approved)
	return c.JSON(http.StatusOK, paginate(items, page, size))
}

func (h *handlers) searchProperties(c echo.Context) error {
	page, size := pageParams(c)
	f := domain.PropertyFilter{Keyword: c.QueryParam("keyword")}
	items := h.catalog.Query(c.Request().Context(), func(p domain.Property) bool {
		return approved(p) && matches(p, f)
	})
	return c.JSON(http.StatusOK, paginate(items, page, size))
}

func (h *handlers) filterProperties(c echo.Context) error {
	page, size := pageParams(c)
	f := domain.PropertyFilter{
		Keyword:      c.QueryParam("keyword"),
		PropertyType: c.QueryParam("propertyType"),
		ListingType:  c.QueryParam("listingType"),
		District:     c.QueryParam("district"),
		City:         c.QueryParam("city"),
	}
	f.MinPrice, _ = strconv.ParseFloat(c.QueryParam("minPrice"), 64)
	f.MaxPrice, _ = strconv.ParseFloat(c.QueryParam("maxPrice"), 64)
	f.MinBedrooms, _ = strconv.Atoi(c.QueryParam("minBedrooms"))

	items := h.catalog.Query(c.Request().Context(), func(p domain.Property) bool {
		return approved(p) && matches(p, f)
	})
	return c.JSON(http.StatusOK, paginate(items, page, size))
}

func (h *handlers) featuredProperties(c echo.Context) error {
	items := h.catalog.Query(c.Request().Context(), func(p domain.Property) bool {
		return approved(p) && p.Featured
	})
	return c.JSON(http.StatusOK, items)
}

func (h *handlers) getProperty(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	p, err := h.catalog.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "property not found"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *handlers) myProperties(c echo.Context) error {
	page, size := pageParams(c)
	owner := callerEmail(c)
	items := h.catalog.Query(c.Request().Context(), func(p domain.Property) bool {
		return p.OwnerEmail == owner
	})
	return c.JSON(http.StatusOK, paginate(items, page, size))
}

func (h *handlers) deleteProperty(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	err = h.catalog.Delete(c.Request().Context(), id, callerEmail(c), callerRole(c) == domain.RoleAdmin)
	switch {
	case errors.Is(err, domain.ErrPropertyNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "property not found"})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Property deleted"})
}

// --- Favorites ---

func (h *handlers) favorites(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Favorites(c.Request().Context(), callerEmail(c)))
}

func (h *handlers) addFavorite(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.catalog.AddFavorite(c.Request().Context(), callerEmail(c), id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "property not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Added to favorites"})
}

func (h *handlers) removeFavorite(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	h.catalog.RemoveFavorite(c.Request().Context(), callerEmail(c), id)
	return c.JSON(http.StatusOK, map[string]string{"message": "Removed from favorites"})
}

func (h *handlers) checkFavorite(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"isFavorite": h.catalog.IsFavorite(c.Request().Context(), callerEmail(c), id)})
}

// --- Admin ---

func (h *handlers) adminProperties(c echo.Context) error {
	page, size := pageParams(c)
	items := h.catalog.Query(c.Request().Context(), nil)
	return c.JSON(http.StatusOK, paginate(items, page, size))
}

func (h *handlers) moderate(next domain.PropertyStatus) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := idParam(c)
		if err != nil {
			return err
		}
		p, err := h.catalog.SetStatus(c.Request().Context(), id, next)
		switch {
		case errors.Is(err, domain.ErrPropertyNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "property not found"})
		case errors.Is(err, domain.ErrInvalidTransition):
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		case err != nil:
			return err
		}
		return c.JSON(http.StatusOK, p)
	}
}

func (h *handlers) adminUsers(c echo.Context) error {
	accts := h.accounts.List(c.Request().Context())
	out := make([]domain.AdminUser, 0, len(accts))
	for _, a := range accts {
		out = append(out, domain.AdminUser{
			ID:        a.ID,
			Email:     a.Email,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Role:      a.Role.Wire(),
			Active:    a.Active,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) toggleUser(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	a, err := h.accounts.ToggleActive(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, map[string]any{"id": a.ID, "active": a.Active})
}
