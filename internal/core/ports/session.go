package ports

import (
	"context"

	"github.com/lankahomes/storefront/internal/core/domain"
)

// Result is what login and register report back to the UI.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SessionController owns one session's state and its transitions.
type SessionController interface {
	State() domain.Session
	Bootstrap(ctx context.Context)
	Login(ctx context.Context, req LoginRequest) Result
	Register(ctx context.Context, req RegisterRequest) Result
	Logout(ctx context.Context)
	ClearError()
}
