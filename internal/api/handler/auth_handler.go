package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lankahomes/storefront/internal/core/domain"
	"github.com/lankahomes/storefront/internal/core/ports"
)

// AuthHandler exposes the visitor's session controller.
type AuthHandler struct {
	loginPath string
}

func NewAuthHandler(loginPath string) *AuthHandler {
	return &AuthHandler{loginPath: loginPath}
}

type loginView struct {
	View    string         `json:"view"`
	From    string         `json:"from"`
	Session domain.Session `json:"session"`
}

type authResult struct {
	ports.Result
	Redirect string       `json:"redirect,omitempty"`
	User     *domain.User `json:"user,omitempty"`
}

type sessionView struct {
	domain.Session
	Phase domain.Phase `json:"phase"`
}

// LoginView is the login entry point the guard and the 401 handler send
// visitors to.
//
// @Summary      Login entry point
// @Tags         session
// @Produce      json
// @Param        from  query     string  false  "Local path to return to"
// @Success      200   {object}  loginView
// @Router       /login [get]
func (h *AuthHandler) LoginView(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginView{
		View:    "login",
		From:    safeRedirect(c.QueryParam("from"), h.loginPath),
		Session: v.Session.State(),
	})
}

// Login signs the visitor in.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      ports.LoginRequest  true  "Login credentials"
// @Success      200   {object}  authResult
// @Failure      400   {object}  authResult
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	var req ports.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res := v.Session.Login(c.Request().Context(), req)
	return h.respond(c, v.Session.State(), res, c.QueryParam("from"))
}

// Register creates an account and signs the visitor in.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      ports.RegisterRequest  true  "Registration details"
// @Success      200   {object}  authResult
// @Failure      400   {object}  authResult
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	var req ports.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res := v.Session.Register(c.Request().Context(), req)
	return h.respond(c, v.Session.State(), res, "/")
}

func (h *AuthHandler) respond(c echo.Context, st domain.Session, res ports.Result, from string) error {
	if !res.Success {
		return c.JSON(http.StatusBadRequest, authResult{Result: res})
	}
	if from == "" {
		from = c.FormValue("from")
	}
	return c.JSON(http.StatusOK, authResult{
		Result:   res,
		Redirect: safeRedirect(from, h.loginPath),
		User:     st.User,
	})
}

// Logout clears the credential and the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	v.Session.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, ports.Result{Success: true, Message: "Logged out"})
}

// Session reports the visitor's session state.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionView
// @Router       /session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	st := v.Session.State()
	return c.JSON(http.StatusOK, sessionView{Session: st, Phase: st.Phase()})
}

// ClearError dismisses the last login or registration error.
func (h *AuthHandler) ClearError(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	v.Session.ClearError()
	return c.NoContent(http.StatusNoContent)
}

// Unauthorized is where the guard sends visitors lacking a role.
func (h *AuthHandler) Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{
		"view":    "unauthorized",
		"message": "You do not have permission to view this page",
	})
}
