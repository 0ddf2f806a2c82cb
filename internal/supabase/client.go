// Package supabase wraps the slice of the Supabase auth REST surface the
// catalog depends on: password grant, refresh, signup and the admin user
// endpoints.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"bookstore/pkg/apperror"

	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// Client is safe for concurrent use; it carries no per-request state
// beyond the shared connection pool.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// TokenResponse is the IdP grant response shared by the password and
// refresh flows.
type TokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         AuthUser `json:"user"`
}

// AuthUser is the IdP-side user record; ID is the subject identifier.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUpResponse wraps the user created by a signup call.
type SignUpResponse struct {
	User AuthUser `json:"user"`
}

// SignInWithPassword performs the password grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*TokenResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var res TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", body, false, &res)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		return nil, apperror.Upstream(nil, "Authentication failed: missing tokens in response")
	}
	return &res, nil
}

// RefreshToken exchanges a refresh token for a new token pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var res TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", body, false, &res)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		return nil, apperror.Upstream(nil, "Token refresh failed: missing tokens in response")
	}
	return &res, nil
}

// SignUp creates the credential record at the IdP and returns the new
// subject identifier.
func (c *Client) SignUp(ctx context.Context, email, password string) (*SignUpResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var res SignUpResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", body, false, &res); err != nil {
		return nil, err
	}
	if err := uuid.Validate(res.User.ID); err != nil {
		return nil, apperror.Upstream(err, "Registration failed: missing user id in response")
	}
	return &res, nil
}

// AdminUpdateUser mirrors a local profile change to the IdP record.
func (c *Client) AdminUpdateUser(ctx context.Context, subjectID string, attrs map[string]interface{}) error {
	return c.do(ctx, http.MethodPatch, "/auth/v1/admin/users/"+subjectID, attrs, true, nil)
}

// AdminDeleteUser removes the IdP record for a deleted local user.
func (c *Client) AdminDeleteUser(ctx context.Context, subjectID string) error {
	return c.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+subjectID, nil, true, nil)
}

// do issues one request. Admin endpoints additionally carry a bearer of
// the API key. Transport failures and non-2xx responses become Upstream
// errors carrying the upstream body for diagnostics.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, admin bool, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperror.Internal(err, "failed to encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperror.Internal(err, "failed to build request")
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Upstream(err, "Identity provider unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Upstream(err, "Failed to read identity provider response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperror.Upstream(nil, "Identity provider returned %d: %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperror.Upstream(err, "Malformed identity provider response")
		}
	}
	return nil
}
