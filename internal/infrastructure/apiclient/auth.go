package apiclient

import (
	"context"
	"fmt"

	"github.com/lankahomes/storefront/internal/core/domain"
	"github.com/lankahomes/storefront/internal/core/ports"
)

// authEnvelope accepts backends that omit the success flag: there a token
// (login, register) or a 2xx status (validate) means success.
type authEnvelope struct {
	Success   *bool  `json:"success"`
	Token     string `json:"token"`
	Message   string `json:"message"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (e authEnvelope) response(implied bool) *ports.AuthResponse {
	ok := implied
	if e.Success != nil {
		ok = *e.Success
	}
	return &ports.AuthResponse{
		Success:   ok,
		Token:     e.Token,
		Message:   e.Message,
		Email:     e.Email,
		Role:      e.Role,
		FirstName: e.FirstName,
		LastName:  e.LastName,
	}
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	var env authEnvelope
	if err := c.post(ctx, "/auth/login", req, &env); err != nil {
		return nil, fmt.Errorf("apiclient.Login: %w", err)
	}
	return env.response(env.Token != ""), nil
}

// Register calls POST /auth/register.
func (c *Client) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	var env authEnvelope
	if err := c.post(ctx, "/auth/register", req, &env); err != nil {
		return nil, fmt.Errorf("apiclient.Register: %w", err)
	}
	return env.response(env.Token != ""), nil
}

// Validate calls GET /auth/validate with the attached credential.
func (c *Client) Validate(ctx context.Context) (*ports.AuthResponse, error) {
	var env authEnvelope
	if err := c.get(ctx, "/auth/validate", nil, &env); err != nil {
		return nil, fmt.Errorf("apiclient.Validate: %w", err)
	}
	resp := env.response(true)
	if !resp.Success {
		return resp, fmt.Errorf("apiclient.Validate: %w", domain.ErrSessionExpired)
	}
	return resp, nil
}
