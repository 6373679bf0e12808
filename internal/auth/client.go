// Package auth delegates all credential handling to the hosted identity
// provider. This service never stores or checks a password itself; it only
// forwards credentials and verifies the provider's access tokens.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"geonews/pkg/config"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session is what the provider hands back on a successful sign-in/sign-up.
type Session struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	UserID        string `json:"user_id"`
	Authenticated bool   `json:"is_authenticated"`
}

// Client speaks the provider's GoTrue-style REST surface.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	AnonKey string
}

func NewClient(cfg config.AuthConfig) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: cfg.URL,
		AnonKey: cfg.AnonKey,
	}
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse covers both provider response shapes: the token grant
// returns user nested under "user", signup may return the user at top level.
type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ID           string `json:"id"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (Session, error) {
	return c.postCredentials(ctx, "/auth/v1/signup", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	return c.postCredentials(ctx, "/auth/v1/token?grant_type=password", email, password)
}

func (c *Client) postCredentials(ctx context.Context, path, email, password string) (Session, error) {
	body, err := json.Marshal(credentialsBody{Email: email, Password: password})
	if err != nil {
		return Session{}, fmt.Errorf("auth: marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("auth: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.AnonKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("auth: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusUnprocessableEntity {
		return Session{}, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return Session{}, fmt.Errorf("auth: provider status %d", resp.StatusCode)
	}

	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Session{}, fmt.Errorf("auth: decode: %w", err)
	}

	userID := sr.User.ID
	if userID == "" {
		userID = sr.ID
	}
	return Session{
		AccessToken:   sr.AccessToken,
		RefreshToken:  sr.RefreshToken,
		UserID:        userID,
		Authenticated: sr.AccessToken != "",
	}, nil
}

// Verify asks the provider who the token belongs to. Any failure, including
// an expired token, reports ErrUnauthenticated. Satisfies Verifier for
// deployments without a shared JWT secret.
func (c *Client) Verify(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", ErrUnauthenticated
	}
	req.Header.Set("apikey", c.AnonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", ErrUnauthenticated
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrUnauthenticated
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil || user.ID == "" {
		return "", ErrUnauthenticated
	}
	return user.ID, nil
}
