// Package eventclient is an HTTP client for the registration endpoints. It keeps
// cookies between calls so a session, and a pending registration captured before
// login, survive across requests.
package eventclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

var (
	// ErrUnauthorized is returned when the server requires a session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPending means an anonymous registration was captured for replay after login.
	ErrPending = errors.New("registration pending login")
)

// APIError is a non-2xx response other than 401.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eventclient: status %d: %s", e.Status, e.Message)
}

type AuthStatus struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	User            string `json:"user,omitempty"`
}

type ReplayedRegistration struct {
	EventName string `json:"eventName"`
	Link      string `json:"link"`
}

type LoginResult struct {
	Message  string                `json:"message"`
	Replayed *ReplayedRegistration `json:"replayedRegistration,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL. A nil httpClient gets a fresh cookie jar.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Jar: jar}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}, nil
}

func (c *Client) AuthStatus(ctx context.Context) (*AuthStatus, error) {
	var out AuthStatus
	if _, err := c.do(ctx, http.MethodGet, "/api/auth-status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Registrations returns the caller's registered event names; empty when anonymous.
func (c *Client) Registrations(ctx context.Context) ([]string, error) {
	var out struct {
		RegisteredEvents []string `json:"registeredEvents"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/user-registrations", nil, &out); err != nil {
		return nil, err
	}
	if out.RegisteredEvents == nil {
		return []string{}, nil
	}
	return out.RegisteredEvents, nil
}

// Register records a registration. An anonymous caller gets ErrPending when the
// server captured the attempt, ErrUnauthorized otherwise.
func (c *Client) Register(ctx context.Context, eventName, link string) error {
	var out struct {
		Pending bool `json:"pending"`
	}
	body := map[string]string{"eventName": eventName, "link": link}
	status, err := c.do(ctx, http.MethodPost, "/api/register-event", body, &out)
	if status == http.StatusUnauthorized && out.Pending {
		return ErrPending
	}
	return err
}

// Login starts a session. Any pending registration is replayed by the server.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates an account and starts a session.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"username": username, "email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/signup", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends the request and decodes a JSON body into out, also on 401.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if out != nil && len(raw) > 0 {
			_ = json.Unmarshal(raw, out)
		}
		return resp.StatusCode, ErrUnauthorized
	case resp.StatusCode >= 300:
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &msg)
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: msg.Message}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}
