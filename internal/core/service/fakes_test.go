package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/lankahomes/storefront/internal/core/domain"
	"github.com/lankahomes/storefront/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory token store
// ---------------------------------------------------------------------------

type fakeStore struct {
	mu      sync.Mutex
	token   string
	user    *domain.User
	setErr  error
	removed int
}

func (f *fakeStore) Token(context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeStore) SetToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.token = token
	return nil
}

func (f *fakeStore) RemoveToken(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.user = nil
	f.removed++
}

func (f *fakeStore) IsAuthenticated(ctx context.Context) bool {
	_, ok := f.Token(ctx)
	return ok
}

func (f *fakeStore) CachedUser(context.Context) (*domain.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil, false
	}
	u := *f.user
	return &u, true
}

func (f *fakeStore) CacheUser(_ context.Context, u domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = &u
	return nil
}

// ---------------------------------------------------------------------------
// Scripted auth API
// ---------------------------------------------------------------------------

type fakeAuthAPI struct {
	loginResp    *ports.AuthResponse
	loginErr     error
	registerResp *ports.AuthResponse
	registerErr  error
	validateResp *ports.AuthResponse
	validateErr  error

	// observed is called inside Login so tests can inspect the session
	// while the call is in flight.
	observed func()

	lastLogin    ports.LoginRequest
	validateHits int
}

func (f *fakeAuthAPI) Login(_ context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	f.lastLogin = req
	if f.observed != nil {
		f.observed()
	}
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) Register(_ context.Context, _ ports.RegisterRequest) (*ports.AuthResponse, error) {
	return f.registerResp, f.registerErr
}

func (f *fakeAuthAPI) Validate(context.Context) (*ports.AuthResponse, error) {
	f.validateHits++
	return f.validateResp, f.validateErr
}

// serverError mimics an HTTP error that carries a backend message.
type serverError struct {
	status int
	msg    string
}

func (e *serverError) Error() string         { return "backend error" }
func (e *serverError) PublicMessage() string { return e.msg }

var errNetwork = errors.New("dial tcp: connection refused")

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func newService(store *fakeStore, api *fakeAuthAPI, opts ...Option) *SessionService {
	return NewSessionService(store, api, discardLogger, opts...)
}

func assertInvariant(t *testing.T, s domain.Session) {
	t.Helper()
	if s.IsAuthenticated && s.User == nil {
		t.Fatalf("session authenticated without a user: %+v", s)
	}
}
