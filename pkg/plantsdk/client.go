// Package plantsdk is a typed client for the SerPlantas API. The server's
// handlers share its request/response types, so the wire contract lives in
// one place.
package plantsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient provides the unauthenticated operations and creates
// authenticated Sessions from login flows.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns an authenticated session; new
// accounts have no second factor, so the token is always a full session.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*Session, *AuthResponse, error) {
	var resp AuthResponse
	if err := c.postJSON(ctx, "/auth/register", req, &resp); err != nil {
		return nil, nil, err
	}
	return newSession(c, resp.Token), &resp, nil
}

// Login authenticates with username and password. When the account has
// two-factor enabled the returned Session is nil and the AuthResponse carries
// a provisional token for CompleteTwoFactorLogin.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*Session, *AuthResponse, error) {
	var resp AuthResponse
	if err := c.postJSON(ctx, "/auth/login", LoginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, nil, err
	}
	if resp.RequiresTwoFactor {
		return nil, &resp, nil
	}
	return newSession(c, resp.Token), &resp, nil
}

// CompleteTwoFactorLogin exchanges a provisional token and a TOTP or backup
// code for a full session.
func (c *SDKClient) CompleteTwoFactorLogin(ctx context.Context, provisionalToken, code string) (*Session, *AuthResponse, error) {
	var resp AuthResponse
	req := TwoFactorLoginRequest{Token: provisionalToken, Code: code}
	if err := c.postJSON(ctx, "/auth/login-2fa", req, &resp); err != nil {
		return nil, nil, err
	}
	return newSession(c, resp.Token), &resp, nil
}

// SessionFromToken wraps an existing bearer token in a Session. Useful when
// a token was stored from an earlier authentication.
func (c *SDKClient) SessionFromToken(token string) *Session {
	return newSession(c, token)
}

// Livez checks the liveness endpoint.
func (c *SDKClient) Livez(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.getJSON(ctx, "/livez", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Readyz checks the readiness endpoint.
func (c *SDKClient) Readyz(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.getJSON(ctx, "/readyz", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
