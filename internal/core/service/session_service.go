package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lankahomes/storefront/internal/core/domain"
	"github.com/lankahomes/storefront/internal/core/ports"
)

// TransitionObserver is told about every applied action.
type TransitionObserver func(action string, from, to domain.Phase)

// publicMessager is implemented by errors that carry a message the backend
// meant for the user.
type publicMessager interface {
	PublicMessage() string
}

// SessionService owns one session. The mutex guards state only and is never
// held across a network or storage call, so concurrent operations are
// last-writer-wins.
type SessionService struct {
	store  ports.TokenStore
	api    ports.AuthAPI
	logger zerolog.Logger

	mu      sync.Mutex
	state   domain.Session
	observe TransitionObserver

	bootOnce sync.Once
	bootDone chan struct{}
}

// Option configures a SessionService.
type Option func(*SessionService)

// WithObserver registers fn to be called after each transition.
func WithObserver(fn TransitionObserver) Option {
	return func(s *SessionService) { s.observe = fn }
}

func NewSessionService(store ports.TokenStore, api ports.AuthAPI, logger zerolog.Logger, opts ...Option) *SessionService {
	s := &SessionService{
		store:    store,
		api:      api,
		logger:   logger,
		state:    domain.NewSession(),
		bootDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.SessionController = (*SessionService)(nil)

// State returns a copy of the current session.
func (s *SessionService) State() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Done is closed once Bootstrap has terminated.
func (s *SessionService) Done() <-chan struct{} {
	return s.bootDone
}

// Bootstrap resolves the persisted credential into a session. Only the first
// call does any work; later calls return immediately.
func (s *SessionService) Bootstrap(ctx context.Context) {
	s.bootOnce.Do(func() {
		defer close(s.bootDone)
		s.bootstrap(ctx)
	})
}

func (s *SessionService) bootstrap(ctx context.Context) {
	s.dispatch(StartAction{Op: domain.OpBootstrap})

	token, ok := s.store.Token(ctx)
	if !ok {
		s.dispatch(SetLoadingAction{Loading: false})
		return
	}

	resp, err := s.api.Validate(ctx)
	if err != nil {
		s.logger.Info().Err(err).Msg("persisted credential rejected")
		s.store.RemoveToken(ctx)
		s.dispatch(LogoutAction{})
		return
	}

	fallbacks := []domain.User{userFromResponse(resp.Email, resp.Role, resp.FirstName, resp.LastName)}
	if cached, ok := s.store.CachedUser(ctx); ok {
		fallbacks = append(fallbacks, *cached)
	}
	user, derr := DeriveIdentity(token, fallbacks...)
	if derr != nil {
		s.logger.Warn().Err(derr).Msg("credential not decodable, using profile fields")
	}

	s.dispatch(SuccessAction{User: user})
	s.logger.Debug().Str("email", user.Email).Str("role", string(user.Role)).Msg("session restored")
}

// Login exchanges credentials for a session. It never returns an error; the
// outcome is in the Result and in the session's Error field.
func (s *SessionService) Login(ctx context.Context, req ports.LoginRequest) ports.Result {
	s.dispatch(StartAction{Op: domain.OpLogin})

	resp, err := s.api.Login(ctx, req)
	if err != nil {
		return s.fail(ctx, messageFrom(err, domain.MsgLoginFailed))
	}

	local := domain.User{Email: req.Email}
	return s.establish(ctx, resp, domain.MsgLoginFailed, domain.MsgLoginSucceeded, local)
}

// Register creates an account and signs it in. Registration responses may
// omit profile fields, so the submitted ones fill the gaps.
func (s *SessionService) Register(ctx context.Context, req ports.RegisterRequest) ports.Result {
	s.dispatch(StartAction{Op: domain.OpRegister})

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return s.fail(ctx, messageFrom(err, domain.MsgRegistrationFailed))
	}

	local := userFromResponse(req.Email, req.Role, req.FirstName, req.LastName)
	return s.establish(ctx, resp, domain.MsgRegistrationFailed, domain.MsgRegistered, local)
}

// establish persists the credential from resp and only then marks the
// session authenticated.
func (s *SessionService) establish(ctx context.Context, resp *ports.AuthResponse, fallback, okMsg string, local domain.User) ports.Result {
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = fallback
		}
		return s.fail(ctx, msg)
	}
	if resp.Token == "" {
		s.logger.Warn().Err(domain.ErrMissingCredential).Msg("auth succeeded without a token")
		return s.fail(ctx, fallback)
	}

	if err := s.store.SetToken(ctx, resp.Token); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist credential")
		return s.fail(ctx, fallback)
	}

	fromServer := userFromResponse(resp.Email, resp.Role, resp.FirstName, resp.LastName)
	user, derr := DeriveIdentity(resp.Token, fromServer, local)
	if derr != nil {
		s.logger.Warn().Err(derr).Msg("credential not decodable, using profile fields")
	}
	if err := s.store.CacheUser(ctx, user); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache profile")
	}

	s.dispatch(SuccessAction{User: user})

	msg := resp.Message
	if msg == "" {
		msg = okMsg
	}
	return ports.Result{Success: true, Message: msg}
}

// fail ends a login or register attempt anonymous. Any earlier credential
// is dropped too, so a later bootstrap cannot restore the session the
// failure just ended.
func (s *SessionService) fail(ctx context.Context, msg string) ports.Result {
	s.store.RemoveToken(ctx)
	s.dispatch(FailureAction{Message: msg})
	return ports.Result{Success: false, Message: msg}
}

// Logout clears the credential and resets to anonymous.
func (s *SessionService) Logout(ctx context.Context) {
	s.store.RemoveToken(ctx)
	s.dispatch(LogoutAction{})
}

// ClearError drops the last failure message.
func (s *SessionService) ClearError() {
	s.dispatch(ClearErrorAction{})
}

// Invalidate resets an authenticated session after the backend rejected its
// credential. The caller has already cleared the token store.
func (s *SessionService) Invalidate() {
	s.mu.Lock()
	authenticated := s.state.IsAuthenticated
	s.mu.Unlock()
	if !authenticated {
		return
	}
	s.dispatch(LogoutAction{})
}

func (s *SessionService) dispatch(a Action) {
	s.mu.Lock()
	from := s.state.Phase()
	s.state = Reduce(s.state, a)
	to := s.state.Phase()
	observe := s.observe
	s.mu.Unlock()

	if observe != nil {
		observe(actionName(a), from, to)
	}
}

func messageFrom(err error, fallback string) string {
	var pm publicMessager
	if errors.As(err, &pm) {
		if msg := pm.PublicMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
