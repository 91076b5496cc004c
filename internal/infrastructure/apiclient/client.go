// Package apiclient is the single configured request pipeline to the
// marketplace REST API. Cross-cutting behaviour is added as Middleware.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lankahomes/storefront/internal/core/ports"
)

const DefaultTimeout = 10 * time.Second

// Config holds the fixed settings of a client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport is the innermost round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// Client calls the marketplace API. It implements ports.AuthAPI,
// ports.ListingAPI and ports.DefaultCredential.
type Client struct {
	baseURL string
	base    http.RoundTripper
	http    *http.Client

	mu     sync.RWMutex
	bearer string
	chain  []Middleware
}

var (
	_ ports.AuthAPI           = (*Client)(nil)
	_ ports.ListingAPI        = (*Client)(nil)
	_ ports.DefaultCredential = (*Client)(nil)
)

// New builds a client. mws wrap the transport, the first one outermost.
func New(cfg Config, mws ...Middleware) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		base:    base,
		http:    &http.Client{Timeout: timeout},
	}
	c.Use(mws...)
	return c
}

// Use appends middlewares to the chain. Call it before the first request.
func (c *Client) Use(mws ...Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chain = append(c.chain, mws...)
	c.http.Transport = Chain(c.base, c.chain...)
}

// SetDefaultBearer sets the credential sent when no middleware overrides it.
func (c *Client) SetDefaultBearer(token string) {
	c.mu.Lock()
	c.bearer = token
	c.mu.Unlock()
}

// DefaultBearer returns the current default credential.
func (c *Client) DefaultBearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodPut, path, nil, nil, nil)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.DefaultBearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return newHTTPError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
