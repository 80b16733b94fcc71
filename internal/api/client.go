// Package api talks to the Podex backend: it mirrors UI preferences to the
// user's account and lists the agents running in the workspace. Every call
// is best-effort; the terminal client works fully offline.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the hosted backend.
	DefaultBaseURL = "https://app.podex.dev"

	// DefaultTimeout bounds a single request round trip.
	DefaultTimeout = 10 * time.Second

	// maxErrorBody caps how much of an error response we keep for logs.
	maxErrorBody = 2048
)

// Client is a thin HTTP client for the Podex backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *TokenManager
	logger  *zap.Logger
}

// NewClient builds a client against baseURL. A nil logger is replaced with
// a no-op one.
func NewClient(baseURL string, tokens *TokenManager, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http.Timeout = d
	}
}

// Authenticated reports whether a credential is available.
func (c *Client) Authenticated() bool {
	_, ok := c.tokens.AccessToken()
	return ok
}

// UpdateUIPreferences mirrors the synced preference subset to the user's
// account record. Without a credential it does nothing and returns nil;
// signed-out users keep their local settings and nothing else.
func (c *Client) UpdateUIPreferences(ctx context.Context, prefs UIPreferences) error {
	token, ok := c.tokens.AccessToken()
	if !ok {
		c.logger.Debug("not signed in, skipping preference sync")
		return nil
	}

	body, err := json.Marshal(map[string]UIPreferences{"ui_preferences": prefs})
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.baseURL+"/api/user/config", bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &StatusError{StatusCode: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}
	return nil
}

// Agent is a coding agent session visible to the workspace.
type Agent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Model     string    `json:"model,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListAgents fetches the agent sessions for the signed-in user.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	token, ok := c.tokens.AccessToken()
	if !ok {
		return nil, ErrAuthRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/agents", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	var payload struct {
		Agents []Agent `json:"agents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode agents: %w", err)
	}
	return payload.Agents, nil
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", uuid.NewString())
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
