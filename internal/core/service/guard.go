package service

import "github.com/lankahomes/storefront/internal/core/domain"

// Decision is what a guarded view should do with the current session.
type Decision string

const (
	DecisionLoading      Decision = "loading"
	DecisionLogin        Decision = "login"
	DecisionUnauthorized Decision = "unauthorized"
	DecisionRender       Decision = "render"
)

// Guard gates a view on session state. Roles empty means any authenticated
// user. It holds no state; the backend re-checks roles on every call.
type Guard struct {
	Roles []domain.Role
}

// Evaluate is a pure function of s and the guard's roles.
func (g Guard) Evaluate(s domain.Session) Decision {
	if s.Loading || !s.Resolved {
		return DecisionLoading
	}
	if !s.IsAuthenticated || s.User == nil {
		return DecisionLogin
	}
	if !s.User.HasRole(g.Roles...) {
		return DecisionUnauthorized
	}
	return DecisionRender
}
