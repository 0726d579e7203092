// Package account is the HTTP client for the Account Service.
package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
	"github.com/jrsteele09/go-salvage-market/users"
)

const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	RefreshPath  = "/auth/refresh"
	LogoutPath   = "/auth/logout"
	MePath       = "/auth/me"

	defaultTimeout = 10 * time.Second
)

// Client talks to the Account Service. It never attaches credentials on its own;
// callers pass the tokens each call needs.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout)
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) Login(ctx context.Context, req authmodel.LoginRequest) (*authmodel.AuthResponse, error) {
	resp := &authmodel.AuthResponse{}
	if err := c.do(ctx, http.MethodPost, LoginPath, "", req, resp, loginKind); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Register(ctx context.Context, req authmodel.RegisterRequest) (*authmodel.AuthResponse, error) {
	resp := &authmodel.AuthResponse{}
	if err := c.do(ctx, http.MethodPost, RegisterPath, "", req, resp, registerKind); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*authmodel.AuthResponse, error) {
	resp := &authmodel.AuthResponse{}
	err := c.do(ctx, http.MethodPost, RefreshPath, "", authmodel.RefreshRequest{RefreshToken: refreshToken}, resp, refreshKind)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout notifies the server. accessToken may be empty.
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	return c.do(ctx, http.MethodPost, LogoutPath, accessToken, authmodel.LogoutRequest{RefreshToken: refreshToken}, nil, defaultKind)
}

// Me fetches the profile of the user owning accessToken
func (c *Client) Me(ctx context.Context, accessToken string) (*users.User, error) {
	u := &users.User{}
	if err := c.do(ctx, http.MethodGet, MePath, accessToken, nil, u, defaultKind); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any, kind func(int) error) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return apperrors.Wrapf(apperrors.ErrInvalidRequest, "encode %s: %v", path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "build %s: %v", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp, kind(resp.StatusCode))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w: %w", method, path, apperrors.ErrServer, err)
	}
	return nil
}
