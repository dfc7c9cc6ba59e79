// Package api implements the HTTP client for the MediPro platform API.
// It is the sole implementation of the outbound boundaries the rest of
// the console declares: the authenticator, the profile fetcher and the
// support thread lister.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/medipro/console/internal/credential"
	"github.com/medipro/console/internal/entitlement"
	"github.com/medipro/console/internal/notification"
	"github.com/medipro/console/internal/session"
	"github.com/medipro/console/internal/shared"
)

// ErrUnauthorized is returned when the API rejects the bearer token. The
// client has already dropped the stored credential by the time callers
// see it.
var ErrUnauthorized = errors.New("api: unauthorized")

// Client wraps interactions with the MediPro API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *credential.Store
	logger     *slog.Logger
}

// NewClient constructs a new client.
func NewClient(baseURL string, creds *credential.Store, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		creds:  creds,
		logger: logger,
	}
}

var (
	_ session.Authenticator     = (*Client)(nil)
	_ session.ProfileFetcher    = (*Client)(nil)
	_ notification.ThreadLister = (*Client)(nil)
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  profile `json:"user"`
}

// profile is the wire shape of the canonical user record. Plan fields come
// back as empty strings when the account has no subscription record.
type profile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Plan            string `json:"plan"`
	PlanStatus      string `json:"planStatus"`
	TermsAcceptedAt string `json:"termsAcceptedAt"`
}

func (p profile) toSession() *session.Session {
	sess := &session.Session{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  shared.Role(p.Role),
	}
	if p.Plan != "" {
		tier := entitlement.Tier(p.Plan)
		sess.Plan = &tier
	}
	if p.PlanStatus != "" {
		status := entitlement.Status(p.PlanStatus)
		sess.PlanStatus = &status
	}
	if p.TermsAcceptedAt != "" {
		if ts, err := time.Parse(time.RFC3339, p.TermsAcceptedAt); err == nil {
			sess.TermsAcceptedAt = &ts
		}
	}
	return sess
}

// Login exchanges credentials for a bearer token and the user profile.
func (c *Client) Login(ctx context.Context, email, password string) (string, *session.Session, error) {
	body, err := json.Marshal(loginPayload{Email: email, Password: password})
	if err != nil {
		return "", nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/auth/login", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusUnauthorized {
		return "", nil, session.ErrInvalidCredentials
	}
	if resp.StatusCode >= 400 {
		return "", nil, fmt.Errorf("login failed with status %d", resp.StatusCode)
	}
	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", nil, err
	}
	if out.Token == "" {
		return "", nil, errors.New("api: login response missing token")
	}
	return out.Token, out.User.toSession(), nil
}

// FetchProfile retrieves the canonical user record for the stored token.
// A 401 clears the stored credential before reporting ErrUnauthorized, so
// the next bootstrap starts signed out instead of retrying a dead token.
func (c *Client) FetchProfile(ctx context.Context) (*session.Session, error) {
	var out profile
	if err := c.getJSON(ctx, "/users/profile", &out); err != nil {
		return nil, err
	}
	return out.toSession(), nil
}

// AcceptTerms records the terms-of-use acceptance for the current user.
func (c *Client) AcceptTerms(ctx context.Context) error {
	req, err := c.authedRequest(ctx, http.MethodPost, "/users/accept-terms", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return c.checkStatus(ctx, resp, "accept terms")
}

type supportTicket struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	UnreadCount int    `json:"unreadCount"`
}

// ListThreads fetches the open support conversations for the current user.
func (c *Client) ListThreads(ctx context.Context) ([]notification.Thread, error) {
	var out []supportTicket
	if err := c.getJSON(ctx, "/support/tickets", &out); err != nil {
		return nil, err
	}
	threads := make([]notification.Thread, 0, len(out))
	for _, t := range out {
		threads = append(threads, notification.Thread{
			ID:          t.ID,
			Subject:     t.Subject,
			UnreadCount: t.UnreadCount,
		})
	}
	return threads, nil
}

func (c *Client) authedRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	token, err := c.creds.Get(ctx)
	if err != nil {
		if errors.Is(err, credential.ErrNoCredential) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.authedRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := c.checkStatus(ctx, resp, path); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) checkStatus(ctx context.Context, resp *http.Response, op string) error {
	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.creds.Clear(ctx); err != nil && c.logger != nil {
			c.logger.Error("clear credential after 401", slog.Any("error", err))
		}
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s failed with status %d", op, resp.StatusCode)
	}
	return nil
}
