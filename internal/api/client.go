// Package api is the HTTP client of the events backend. It maps the backend's
// JSON to the model types and reports failures with the errors in errors.go.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"eventplanner/local-app/internal/config"
	"eventplanner/local-app/internal/log"
	"eventplanner/local-app/internal/model"
)

const maxResponseBytes = 4 << 20

// CredentialSource supplies the active session credentials for authenticated calls.
type CredentialSource interface {
	Credentials() (model.Credentials, bool)
}

// CredentialsFunc adapts a function to CredentialSource.
type CredentialsFunc func() (model.Credentials, bool)

func (f CredentialsFunc) Credentials() (model.Credentials, bool) { return f() }

type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	logger  *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, creds CredentialSource, logger *log.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = log.NewNop()
	}
	c := &Client{
		baseURL: trimSlash(baseURL),
		http:    &http.Client{},
		creds:   creds,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a client using the configured base URL and timeout.
func NewFromConfig(cfg *config.Config, creds CredentialSource, logger *log.Logger) *Client {
	return New(cfg.APIBaseURL, creds, logger, WithTimeout(cfg.RequestTimeout()))
}

// Login checks the given credentials and returns the matching user.
func (c *Client) Login(ctx context.Context, username, password string) (model.User, error) {
	var out userDTO
	creds := model.Credentials{Username: username, Password: password}
	if err := c.do(ctx, http.MethodGet, "/login", nil, nil, &creds, &out); err != nil {
		return model.User{}, err
	}
	return out.toUser(), nil
}

// Register creates an account. The backend does not return a role, so the
// user is a regular USER unless it says otherwise. Fields the backend leaves
// empty are filled from data.
func (c *Client) Register(ctx context.Context, data model.RegisterData) (model.User, error) {
	body := registerRequest{
		FullName: data.FullName,
		Username: data.Username,
		Email:    data.Email,
		Phone:    data.Phone,
		Password: data.Password,
	}
	var out userDTO
	if err := c.do(ctx, http.MethodPost, "/register", nil, body, nil, &out); err != nil {
		return model.User{}, err
	}
	if out.Username == "" {
		out.Username = data.Username
	}
	if out.FullName == "" && out.Name == "" {
		out.FullName = data.FullName
	}
	return out.toUser(), nil
}

// GetEvents lists the events visible under filter for userID. Events the
// backend returns that do not match the filter are dropped.
func (c *Client) GetEvents(ctx context.Context, filter model.EventFilter, userID string) ([]model.Event, error) {
	creds, err := c.sessionCredentials()
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("filter", string(filter))
	query.Set("userId", userID)

	var out []eventDTO
	if err := c.do(ctx, http.MethodGet, "/events", query, nil, &creds, &out); err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(out))
	for _, dto := range out {
		ev := dto.toEvent()
		if !filter.Matches(ev, userID) {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, data model.NewEventData, organizerID string) (model.Event, error) {
	creds, err := c.sessionCredentials()
	if err != nil {
		return model.Event{}, err
	}
	var out eventDTO
	if err := c.do(ctx, http.MethodPost, "/events", nil, newEventRequest(data, organizerID), &creds, &out); err != nil {
		return model.Event{}, err
	}
	return out.toEvent(), nil
}

// UpdateEvent replaces every editable field of the event.
func (c *Client) UpdateEvent(ctx context.Context, id string, data model.NewEventData) (model.Event, error) {
	creds, err := c.sessionCredentials()
	if err != nil {
		return model.Event{}, err
	}
	var out eventDTO
	if err := c.do(ctx, http.MethodPut, eventPath(id), nil, newEventRequest(data, ""), &creds, &out); err != nil {
		return model.Event{}, err
	}
	return out.toEvent(), nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	creds, err := c.sessionCredentials()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, eventPath(id), nil, nil, &creds, nil)
}

func (c *Client) JoinEvent(ctx context.Context, id, userID string) error {
	return c.attendance(ctx, id, "join", userID)
}

func (c *Client) LeaveEvent(ctx context.Context, id, userID string) error {
	return c.attendance(ctx, id, "leave", userID)
}

func (c *Client) attendance(ctx context.Context, id, action, userID string) error {
	creds, err := c.sessionCredentials()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, eventPath(id)+"/"+action, nil, attendanceRequest{UserID: userID}, &creds, nil)
}

func (c *Client) sessionCredentials() (model.Credentials, error) {
	if c.creds == nil {
		return model.Credentials{}, ErrNoCredentials
	}
	creds, ok := c.creds.Credentials()
	if !ok || creds.Empty() {
		return model.Credentials{}, ErrNoCredentials
	}
	return creds, nil
}

// do performs one request. A nil auth sends no Authorization header.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, auth *model.Credentials, out interface{}) error {
	requestID := uuid.NewString()
	ctx = log.WithFields(ctx, log.Fields{"request_id": requestID, "method": method, "path": path})
	op := method + " " + path

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != nil {
		req.SetBasicAuth(auth.Username, auth.Password)
	}

	start := time.Now()
	c.logger.Debug(ctx, "Sending request", nil)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn(ctx, "Backend unreachable", log.Fields{"error": err})
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &NetworkError{Op: op, Err: err}
	}

	fields := log.Fields{"status": resp.StatusCode, "duration_ms": time.Since(start).Milliseconds()}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Warn(ctx, "Credentials rejected", fields)
		return ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Warn(ctx, "Request failed", fields)
		return &RequestFailedError{Status: resp.StatusCode, Message: errorMessage(resp, data)}
	}
	c.logger.Info(ctx, "Request completed", fields)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// errorMessage prefers the JSON message or error field and falls back to the status line.
func errorMessage(resp *http.Response, data []byte) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return resp.Status
}

func eventPath(id string) string {
	return "/events/" + url.PathEscape(id)
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
