package apiclient

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/lankahomes/storefront/internal/core/ports"
)

// Middleware decorates a round tripper with one responsibility.
type Middleware func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base with mws; mws[0] sees the request first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// TokenSource yields the credential to attach, if any.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// AttachCredential sets "Authorization: Bearer <token>" from src on every
// outgoing request. A missing token leaves the request as it is.
func AttachCredential(src TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if tok, ok := src.Token(req.Context()); ok {
				req = req.Clone(req.Context())
				req.Header.Set("Authorization", "Bearer "+tok)
			}
			return next.RoundTrip(req)
		})
	}
}

// TokenRemover is the part of the token store the 401 handler needs.
type TokenRemover interface {
	RemoveToken(ctx context.Context)
}

// InvalidSessionConfig wires DetectInvalidSession.
type InvalidSessionConfig struct {
	Store     TokenRemover
	Navigator ports.Navigator
	// LoginPath is the login entry point; no redirect is issued from it.
	LoginPath string
	// OnInvalid run after the store is cleared, e.g. session resets.
	OnInvalid []func()
	// Observe is called once per detected invalid session.
	Observe func(redirected bool)
	Logger  zerolog.Logger
}

// DetectInvalidSession reacts to 401 responses: it clears the token store,
// runs the reset hooks and navigates to the login path unless the current
// view already is the login path. The response is returned unchanged so the
// caller still sees the error.
func DetectInvalidSession(cfg InvalidSessionConfig) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			cfg.Store.RemoveToken(req.Context())
			for _, hook := range cfg.OnInvalid {
				hook()
			}

			redirected := false
			if cfg.Navigator != nil && !onPath(cfg.Navigator.CurrentPath(), cfg.LoginPath) {
				cfg.Navigator.Navigate(cfg.LoginPath)
				redirected = true
			}
			if cfg.Observe != nil {
				cfg.Observe(redirected)
			}

			cfg.Logger.Warn().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Bool("redirected", redirected).
				Msg("session invalidated by backend")

			return resp, nil
		})
	}
}

// onPath reports whether current (which may carry a query) is the path p.
func onPath(current, p string) bool {
	if i := strings.IndexAny(current, "?#"); i >= 0 {
		current = current[:i]
	}
	return strings.TrimRight(current, "/") == strings.TrimRight(p, "/")
}

// Instrument records request counts and latencies per endpoint.
func Instrument(requests *prometheus.CounterVec, duration *prometheus.HistogramVec) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			endpoint := endpointLabel(req.URL.Path)
			status := "error"
			if err == nil {
				status = statusClass(resp.StatusCode)
			}
			requests.WithLabelValues(req.Method, endpoint, status).Inc()
			duration.WithLabelValues(req.Method, endpoint).Observe(time.Since(start).Seconds())
			return resp, err
		})
	}
}

// Trace opens a client span per request on the global tracer provider and
// propagates its context in the request headers.
func Trace(tracerName string) Middleware {
	tracer := otel.Tracer(tracerName)
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ctx, span := tracer.Start(req.Context(), "HTTP "+req.Method+" "+endpointLabel(req.URL.Path),
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("url.path", req.URL.Path),
					attribute.String("server.address", req.URL.Host),
				),
			)
			defer span.End()

			req = req.Clone(ctx)
			otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

			resp, err := next.RoundTrip(req)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return resp, err
			}
			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			if resp.StatusCode >= 500 {
				span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
			}
			return resp, nil
		})
	}
}

// LogRequests writes one debug line per request.
func LogRequests(logger zerolog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			ev := logger.Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Dur("latency", time.Since(start))
			if err != nil {
				ev.Err(err).Msg("api request failed")
			} else {
				ev.Int("status", resp.StatusCode).Msg("api request")
			}
			return resp, err
		})
	}
}

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// endpointLabel collapses numeric path segments so ids do not explode
// label cardinality.
func endpointLabel(path string) string {
	for numericSegment.MatchString(path) {
		path = numericSegment.ReplaceAllString(path, "/:id$1")
	}
	return path
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
