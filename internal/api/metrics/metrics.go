// Package metrics defines and registers the custom Prometheus metrics of the
// storefront. It is the single source of truth for metric names, labels and
// help strings. Collectors register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lankahomes/storefront/internal/core/domain"
)

const namespace = "storefront"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts reducer actions applied to visitor sessions.
// Labels:
//   - action: "start", "success", "failure", "logout", "clear_error", "set_loading"
//   - from, to: the session phase before and after the action
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by action and phase.",
	},
	[]string{"action", "from", "to"},
)

// InvalidSessionsTotal counts 401 responses that cleared a stored credential.
// Label:
//   - redirected: "true" when the visitor was sent to the login entry point
var InvalidSessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invalid_sessions_total",
		Help:      "Total number of invalid-session responses handled by the API client.",
	},
	[]string{"redirected"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - route: the echo route path (e.g. "/admin/users")
//   - decision: "loading", "login", "unauthorized", "render"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"route", "decision"},
)

// ActiveVisitors tracks visitors with a live session stack in this process.
var ActiveVisitors = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_visitors",
		Help:      "Current number of visitor session stacks held in memory.",
	},
)

// ── Backend API metrics ───────────────────────────────────────────────────────

// APIRequestsTotal counts outbound calls to the marketplace backend.
// Labels:
//   - method, endpoint: HTTP method and id-collapsed path (e.g. "/properties/:id")
//   - status: "2xx", "4xx", "5xx" or "error" for transport failures
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of backend API requests.",
	},
	[]string{"method", "endpoint", "status"},
)

// APIRequestDuration measures backend round-trip time.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of backend API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "endpoint"},
)

// ObserveTransition is a service.TransitionObserver feeding
// SessionTransitionsTotal.
func ObserveTransition(action string, from, to domain.Phase) {
	SessionTransitionsTotal.WithLabelValues(action, string(from), string(to)).Inc()
}

// ObserveInvalidSession feeds InvalidSessionsTotal.
func ObserveInvalidSession(redirected bool) {
	label := "false"
	if redirected {
		label = "true"
	}
	InvalidSessionsTotal.WithLabelValues(label).Inc()
}
