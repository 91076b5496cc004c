// Package tokenstore persists a session's bearer credential on top of a
// ports.Storage backend and keeps the HTTP client's default Authorization
// header in step with it.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lankahomes/storefront/internal/core/domain"
	"github.com/lankahomes/storefront/internal/core/ports"
)

const DefaultTTL = 24 * time.Hour

var ErrEmptyToken = errors.New("tokenstore: empty token")

// Config selects where the entries live.
type Config struct {
	// KeyPrefix namespaces the entries, e.g. "storefront:<visitor id>".
	KeyPrefix string
	TTL       time.Duration
}

// Store implements ports.TokenStore. Every call that changes or observes
// the credential updates the default header while holding the same lock.
type Store struct {
	storage ports.Storage
	header  ports.DefaultCredential
	ttl     time.Duration
	tokKey  string
	userKey string
	logger  zerolog.Logger

	mu sync.Mutex
}

var _ ports.TokenStore = (*Store)(nil)

// New builds a Store. header may be nil when nothing needs a default
// credential.
func New(storage ports.Storage, header ports.DefaultCredential, cfg Config, logger zerolog.Logger) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := cfg.KeyPrefix
	if prefix != "" {
		prefix += ":"
	}
	return &Store{
		storage: storage,
		header:  header,
		ttl:     ttl,
		tokKey:  prefix + "token",
		userKey: prefix + "user",
		logger:  logger,
	}
}

func (s *Store) Token(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.storage.Get(ctx, s.tokKey)
	if err != nil {
		if !errors.Is(err, domain.ErrStorageMiss) {
			s.logger.Warn().Err(err).Str("key", s.tokKey).Msg("token read failed")
		}
		s.setHeader("")
		return "", false
	}
	s.setHeader(tok)
	return tok, true
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(ctx, s.tokKey, token, s.ttl); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.setHeader(token)
	return nil
}

func (s *Store) RemoveToken(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.tokKey, s.userKey); err != nil {
		s.logger.Warn().Err(err).Str("key", s.tokKey).Msg("token delete failed")
	}
	s.setHeader("")
}

func (s *Store) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Token(ctx)
	return ok
}

func (s *Store) CachedUser(ctx context.Context) (*domain.User, bool) {
	raw, err := s.storage.Get(ctx, s.userKey)
	if err != nil {
		return nil, false
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Debug().Err(err).Msg("discarding unreadable cached profile")
		return nil, false
	}
	return &u, true
}

// CacheUser stores the profile without expiry; it is re-derived on every
// bootstrap and removed with the token.
func (s *Store) CacheUser(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.storage.Set(ctx, s.userKey, string(raw), 0); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}
	return nil
}

func (s *Store) setHeader(token string) {
	if s.header != nil {
		s.header.SetDefaultBearer(token)
	}
}
