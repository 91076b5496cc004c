// Package app is the composition root: it assembles storage, token stores,
// API clients and session controllers into runnable processes.
package app

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/lankahomes/storefront/internal/api/metrics"
	"github.com/lankahomes/storefront/internal/core/ports"
	"github.com/lankahomes/storefront/internal/core/service"
	"github.com/lankahomes/storefront/internal/infrastructure/apiclient"
	"github.com/lankahomes/storefront/internal/infrastructure/tokenstore"
	"github.com/lankahomes/storefront/pkg/logger"
)

const tracerName = "github.com/lankahomes/storefront/apiclient"

// Stack is one session: its API client, token store and controller.
type Stack struct {
	Client  *apiclient.Client
	Store   *tokenstore.Store
	Session *service.SessionService
}

// StackConfig describes one session stack.
type StackConfig struct {
	BaseURL   string
	Timeout   time.Duration
	KeyPrefix string
	TokenTTL  time.Duration
	LoginPath string
	Navigator ports.Navigator
	// Transport replaces http.DefaultTransport, for tests.
	Transport http.RoundTripper
}

// NewStack wires a client, its token store and a session controller.
// Outgoing requests pass, in order: tracing, metrics, logging, credential
// attachment and invalid-session detection.
func NewStack(storage ports.Storage, cfg StackConfig, log zerolog.Logger) *Stack {
	client := apiclient.New(apiclient.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		Transport: cfg.Transport,
	})
	store := tokenstore.New(storage, client, tokenstore.Config{
		KeyPrefix: cfg.KeyPrefix,
		TTL:       cfg.TokenTTL,
	}, logger.For(log, "tokenstore"))
	session := service.NewSessionService(store, client, logger.For(log, "session"),
		service.WithObserver(metrics.ObserveTransition))

	client.Use(
		apiclient.Trace(tracerName),
		apiclient.Instrument(metrics.APIRequestsTotal, metrics.APIRequestDuration),
		apiclient.LogRequests(logger.For(log, "apiclient")),
		apiclient.AttachCredential(store),
		apiclient.DetectInvalidSession(apiclient.InvalidSessionConfig{
			Store:     store,
			Navigator: cfg.Navigator,
			LoginPath: cfg.LoginPath,
			OnInvalid: []func(){session.Invalidate},
			Observe:   metrics.ObserveInvalidSession,
			Logger:    logger.For(log, "apiclient"),
		}),
	)

	return &Stack{Client: client, Store: store, Session: session}
}
