package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankahomes/storefront/internal/core/domain"
	"github.com/lankahomes/storefront/internal/core/ports"
	"github.com/lankahomes/storefront/internal/infrastructure/db/memory"
	"github.com/lankahomes/storefront/internal/infrastructure/tokenstore"
)

type recordingNavigator struct {
	mu      sync.Mutex
	current string
	visits  []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visits = append(n.visits, path)
}

func (n *recordingNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

type harness struct {
	client *Client
	store  *tokenstore.Store
	nav    *recordingNavigator
	resets int
}

// newHarness wires a client the same way the application does: credential
// attached from the token store, 401s detected and reported.
func newHarness(t *testing.T, srv *httptest.Server, current string) *harness {
	t.Helper()
	h := &harness{nav: &recordingNavigator{current: current}}
	h.client = New(Config{BaseURL: srv.URL, Timeout: time.Second})
	h.store = tokenstore.New(memory.New(), h.client, tokenstore.Config{KeyPrefix: "t"}, zerolog.Nop())
	h.client.Use(
		AttachCredential(h.store),
		DetectInvalidSession(InvalidSessionConfig{
			Store:     h.store,
			Navigator: h.nav,
			LoginPath: "/login",
			OnInvalid: []func(){func() { h.resets++ }},
			Logger:    zerolog.Nop(),
		}),
	)
	return h
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"), "no credential before login")

		var body ports.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body.Email)

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": "tok", "email": "a@b.com", "role": "BUYER"})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/api/"})
	resp, err := c.Login(context.Background(), ports.LoginRequest{Email: "a@b.com", Password: "x"})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "BUYER", resp.Role)
}

// A backend that omits the success flag still reads as success when it
// issued a token.
func TestLogin_ImpliedSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"token": "tok", "message": "Login successful!"})
	}))
	defer srv.Close()

	resp, err := New(Config{BaseURL: srv.URL}).Login(context.Background(), ports.LoginRequest{})

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestLogin_RejectionCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid email or password!"})
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).Login(context.Background(), ports.LoginRequest{})

	require.Error(t, err)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "Invalid email or password!", httpErr.PublicMessage())
}

func TestHTTPError_RawBodyIsNotPublic(t *testing.T) {
	e := newHTTPError(http.StatusBadGateway, []byte("<html>upstream died</html>"))

	assert.Equal(t, "<html>upstream died</html>", e.Message)
	assert.Empty(t, e.PublicMessage())
	assert.True(t, IsStatus(e, http.StatusBadGateway))
}

func TestHTTPError_ErrorField(t *testing.T) {
	e := newHTTPError(http.StatusForbidden, []byte(`{"error":"access forbidden"}`))

	assert.Equal(t, "access forbidden", e.PublicMessage())
	assert.Equal(t, "HTTP 403: access forbidden", e.Error())
}

func TestAttachCredential(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []domain.Property{})
	}))
	defer srv.Close()
	h := newHarness(t, srv, "/")
	ctx := context.Background()

	_, err := h.client.Favorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "absent credential is legal")

	require.NoError(t, h.store.SetToken(ctx, "tok-1"))
	_, err = h.client.Favorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", got)
	assert.Equal(t, "tok-1", h.client.DefaultBearer())
}

// A 401 on an authenticated call clears the store and navigates
// to the login entry point exactly once.
func TestDetectInvalidSession_ClearsAndRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid or expired token"})
	}))
	defer srv.Close()
	h := newHarness(t, srv, "/favorites")
	ctx := context.Background()
	require.NoError(t, h.store.SetToken(ctx, "tok"))

	_, err := h.client.Favorites(ctx)

	assert.True(t, IsStatus(err, http.StatusUnauthorized), "caller still sees the error")
	assert.False(t, h.store.IsAuthenticated(ctx))
	assert.Empty(t, h.client.DefaultBearer())
	assert.Equal(t, []string{"/login"}, h.nav.visits)
	assert.Equal(t, 1, h.resets)
}

func TestDetectInvalidSession_NoRedirectFromLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	h := newHarness(t, srv, "/login?from=%2Ffavorites")
	ctx := context.Background()
	require.NoError(t, h.store.SetToken(ctx, "tok"))

	_, err := h.client.Validate(ctx)

	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.False(t, h.store.IsAuthenticated(ctx))
	assert.Empty(t, h.nav.visits)
}

func TestOtherErrorsPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "access forbidden"})
	}))
	defer srv.Close()
	h := newHarness(t, srv, "/admin/users")
	ctx := context.Background()
	require.NoError(t, h.store.SetToken(ctx, "tok"))

	_, err := h.client.AdminUsers(ctx)

	assert.True(t, IsStatus(err, http.StatusForbidden))
	assert.True(t, h.store.IsAuthenticated(ctx), "403 must not clear the credential")
	assert.Empty(t, h.nav.visits)
	assert.Zero(t, h.resets)
}

func TestTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Login(context.Background(), ports.LoginRequest{})

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		body    map[string]any
		wantErr error
	}{
		{"explicit success", map[string]any{"success": true, "email": "a@b.com", "role": "ADMIN"}, nil},
		{"no flag", map[string]any{"email": "a@b.com", "role": "ADMIN", "message": "Token is valid"}, nil},
		{"explicit failure", map[string]any{"success": false}, domain.ErrSessionExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				writeJSON(w, http.StatusOK, tc.body)
			}))
			defer srv.Close()

			_, err := New(Config{BaseURL: srv.URL}).Validate(context.Background())
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestFilterProperties_SendsOnlySetFields(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(w, http.StatusOK, domain.Page[domain.Property]{})
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).FilterProperties(context.Background(),
		domain.PropertyFilter{City: "Kandy", MinPrice: 5_000_000, MinBedrooms: 3}, 1, 12)

	require.NoError(t, err)
	assert.Equal(t, url.Values{
		"page":        {"1"},
		"size":        {"12"},
		"city":        {"Kandy"},
		"minPrice":    {"5000000"},
		"minBedrooms": {"3"},
	}, query)
}

func TestInstrument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"isFavorite": true})
	}))
	defer srv.Close()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "requests_total"}, []string{"method", "endpoint", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "duration_seconds"}, []string{"method", "endpoint"})
	c := New(Config{BaseURL: srv.URL}, Instrument(requests, duration), Trace("storefront-test"), LogRequests(zerolog.Nop()))

	fav, err := c.IsFavorite(context.Background(), 42)

	require.NoError(t, err)
	assert.True(t, fav)
	assert.Equal(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("GET", "/favorites/:id/check", "2xx")))
}

func TestEndpointLabel(t *testing.T) {
	cases := map[string]string{
		"/properties":                  "/properties",
		"/properties/12":               "/properties/:id",
		"/admin/properties/7/approve":  "/admin/properties/:id/approve",
		"/admin/users/3/toggle-status": "/admin/users/:id/toggle-status",
		"/a/1/2":                       "/a/:id/:id",
	}
	for in, want := range cases {
		assert.Equal(t, want, endpointLabel(in), in)
	}
}
