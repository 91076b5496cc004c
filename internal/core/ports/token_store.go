package ports

import (
	"context"

	"github.com/lankahomes/storefront/internal/core/domain"
)

// TokenStore persists the single bearer credential of one session, plus an
// optional cached profile.
type TokenStore interface {
	// Token returns the persisted credential; ok is false when absent or expired.
	Token(ctx context.Context) (token string, ok bool)
	// SetToken persists token. A storage rejection is returned, never swallowed.
	SetToken(ctx context.Context, token string) error
	// RemoveToken drops the credential and the cached profile. Idempotent.
	RemoveToken(ctx context.Context)
	// IsAuthenticated is a weak presence check, not a validity check.
	IsAuthenticated(ctx context.Context) bool

	CachedUser(ctx context.Context) (*domain.User, bool)
	CacheUser(ctx context.Context, user domain.User) error
}

// DefaultCredential receives the credential the HTTP client should send by
// default. An empty token clears it.
type DefaultCredential interface {
	SetDefaultBearer(token string)
}
