package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/lankahomes/storefront/internal/api"
	"github.com/lankahomes/storefront/internal/api/metrics"
	"github.com/lankahomes/storefront/internal/api/visitor"
	"github.com/lankahomes/storefront/internal/core/ports"
	"github.com/lankahomes/storefront/internal/pkg/config"
	"github.com/lankahomes/storefront/pkg/logger"
)

// Server is the storefront web process.
type Server struct {
	cfg      *config.Config
	echo     *echo.Echo
	registry *visitor.Registry
	storage  ports.Storage
	close    func(context.Context) error
	cancel   context.CancelFunc
	log      zerolog.Logger

	transport  http.RoundTripper
	metricsReg *prometheus.Registry
}

type Option func(*Server)

// WithStorage uses st instead of opening the configured driver.
func WithStorage(st ports.Storage) Option {
	return func(s *Server) { s.storage = st }
}

// WithTransport sets the innermost round tripper of every visitor client.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Server) { s.transport = rt }
}

// WithMetricsRegistry registers HTTP metrics on reg instead of the default.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.metricsReg = reg }
}

// NewServer builds the storefront. Call Shutdown to release it.
func NewServer(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*Server, error) {
	s := &Server{cfg: cfg, log: log, close: func(context.Context) error { return nil }}
	for _, opt := range opts {
		opt(s)
	}

	if s.storage == nil {
		st, closeFn, err := OpenStorage(ctx, cfg, logger.For(log, "storage"))
		if err != nil {
			return nil, err
		}
		s.storage, s.close = st, closeFn
	}

	bootCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	boot := visitor.NewBootstrapper(0, cfg.API.Timeout, log)
	boot.Start(bootCtx)

	s.registry = visitor.NewRegistry(s.newVisitor, log,
		visitor.WithBootstrapper(boot),
		visitor.WithIdleTimeout(cfg.Session.VisitorIdle),
		visitor.WithMaxVisitors(cfg.Session.MaxVisitors),
		visitor.WithOnCreate(func(*visitor.Visitor) { metrics.ActiveVisitors.Inc() }),
		visitor.WithOnEvict(func(*visitor.Visitor) { metrics.ActiveVisitors.Dec() }),
	)
	go s.sweep(bootCtx, cfg.Session.SweepInterval)

	ready := map[string]ports.Pinger{}
	if p, ok := s.storage.(ports.Pinger); ok {
		ready["storage"] = p
	}

	deps := api.RouterDeps{
		Registry: s.registry,
		Session:  cfg.Session,
		Ready:    ready,
		Logger:   logger.For(log, "http"),
	}
	if s.metricsReg != nil {
		deps.Registerer, deps.Gatherer = s.metricsReg, s.metricsReg
	}
	s.echo = api.NewRouter(deps)
	return s, nil
}

func (s *Server) newVisitor(id string) (*visitor.Visitor, error) {
	nav := visitor.NewNavigator()
	stack := NewStack(s.storage, StackConfig{
		BaseURL:   s.cfg.API.BaseURL,
		Timeout:   s.cfg.API.Timeout,
		KeyPrefix: s.cfg.Storage.KeyPrefix + ":" + id,
		TokenTTL:  s.cfg.Session.TokenTTL,
		LoginPath: s.cfg.Session.LoginPath,
		Navigator: nav,
		Transport: s.transport,
	}, s.log.With().Str("visitor", id).Logger())

	return &visitor.Visitor{
		ID:       id,
		Session:  stack.Session,
		Listings: stack.Client,
		Nav:      nav,
	}, nil
}

// sweeper is a storage that drops expired entries only when asked.
type sweeper interface {
	Sweep() int
}

// sweep releases idle visitors, and expired entries of a sweeping storage,
// every interval until ctx is done.
func (s *Server) sweep(ctx context.Context, interval time.Duration) {
	st, _ := s.storage.(sweeper)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			visitors := s.registry.Sweep()
			entries := 0
			if st != nil {
				entries = st.Sweep()
			}
			if visitors > 0 || entries > 0 {
				s.log.Debug().Int("visitors", visitors).Int("entries", entries).
					Int("held", s.registry.Len()).Msg("swept idle state")
			}
		case <-ctx.Done():
			return
		}
	}
}

// Handler returns the HTTP handler to serve.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on the configured port until Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("port", s.cfg.Port).Str("api", s.cfg.API.BaseURL).Msg("storefront listening")
	if err := s.echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, the bootstrap workers and the storage.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.cancel()
	return errors.Join(err, s.close(ctx))
}
