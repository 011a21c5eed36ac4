// Package chat talks to a Mattermost-compatible presence API.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	statusPath     = "/api/v4/users/me/status"
	customPath     = "/api/v4/users/me/status/custom"
)

// Availability values understood by the server.
const (
	StatusOnline  = "online"
	StatusAway    = "away"
	StatusDND     = "dnd"
	StatusOffline = "offline"
)

// Credentials authenticate one user against one server.
type Credentials struct {
	ServerURL string
	Token     string
	UserID    string
}

// Presence is the chat API surface used by the presence service.
type Presence interface {
	SetStatus(ctx context.Context, creds Credentials, status string) error
	SetCustomStatus(ctx context.Context, creds Credentials, emoji, text string) error
	ClearCustomStatus(ctx context.Context, creds Credentials) error
}

// APIError is a non-2xx answer from the chat server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat api returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	httpClient *http.Client
}

// NewClient uses httpClient when given, otherwise a client with a 10s timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{httpClient: httpClient}
}

func (c *Client) SetStatus(ctx context.Context, creds Credentials, status string) error {
	body := map[string]string{"user_id": creds.UserID, "status": status}
	return c.do(ctx, http.MethodPut, creds, statusPath, body)
}

func (c *Client) SetCustomStatus(ctx context.Context, creds Credentials, emoji, text string) error {
	body := map[string]string{"emoji": emoji, "text": text}
	return c.do(ctx, http.MethodPut, creds, customPath, body)
}

func (c *Client) ClearCustomStatus(ctx context.Context, creds Credentials) error {
	return c.do(ctx, http.MethodDelete, creds, customPath, nil)
}

func (c *Client) do(ctx context.Context, method string, creds Credentials, path string, body any) error {
	base := strings.TrimRight(strings.TrimSpace(creds.ServerURL), "/")
	if base == "" {
		return fmt.Errorf("chat server url is required")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// errorMessage prefers the server's {"message": ...} field over the raw body.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return err.Error()
	}
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &parsed) == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(raw))
}
