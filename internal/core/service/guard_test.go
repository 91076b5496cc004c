package service

import (
	"testing"

	"github.com/lankahomes/storefront/internal/core/domain"
)

func TestGuard_Evaluate(t *testing.T) {
	buyer := &domain.User{Email: "b@lh.lk", Role: domain.RoleBuyer}
	admin := &domain.User{Email: "a@lh.lk", Role: domain.RoleAdmin}

	cases := []struct {
		name    string
		roles   []domain.Role
		session domain.Session
		want    Decision
	}{
		{"uninitialized", nil, domain.NewSession(), DecisionLoading},
		{"bootstrapping", nil, domain.Session{Loading: true, Pending: domain.OpBootstrap}, DecisionLoading},
		{"login in flight", nil, domain.Session{Resolved: true, Loading: true, Pending: domain.OpLogin}, DecisionLoading},
		{"anonymous", nil, domain.Session{Resolved: true}, DecisionLogin},
		{"any role", nil, domain.Session{Resolved: true, IsAuthenticated: true, User: buyer}, DecisionRender},
		{"role mismatch", []domain.Role{domain.RoleAdmin}, domain.Session{Resolved: true, IsAuthenticated: true, User: buyer}, DecisionUnauthorized},
		{"role match", []domain.Role{domain.RoleSeller, domain.RoleAdmin}, domain.Session{Resolved: true, IsAuthenticated: true, User: admin}, DecisionRender},
		{"flag without user", nil, domain.Session{Resolved: true, IsAuthenticated: true}, DecisionLogin},
	}

	for _, tc := range cases {
		got := Guard{Roles: tc.roles}.Evaluate(tc.session)
		if got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
