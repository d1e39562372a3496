// Package client is a Go client for the MuchasVidas HTTP API. It keeps the
// bearer token returned by Register or Login and attaches it to every
// request until the server answers 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TPerez13/MuchasVidas/internal/model"
	"github.com/TPerez13/MuchasVidas/internal/service"
)

const defaultTimeout = 15 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// APIError is a non-2xx response decoded from the uniform error body.
type APIError struct {
	Status  int             `json:"-"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (%d): %s", e.Code, e.Status, e.Message)
}

// IsAPIError reports whether err is an *APIError with the given code.
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken starts the client with a previously issued token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("client: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("client: invalid base URL %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the current bearer token, empty when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken signs the client out locally.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, email, name, password string) (*service.AuthResult, error) {
	var result service.AuthResult
	body := map[string]string{"email": email, "name": name, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &result); err != nil {
		return nil, fmt.Errorf("client: register: %w", err)
	}
	c.SetToken(result.Token)
	return &result, nil
}

// Login signs in and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	var result service.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &result); err != nil {
		return nil, fmt.Errorf("client: login: %w", err)
	}
	c.SetToken(result.Token)
	return &result, nil
}

// Me returns the identity the current token resolves to.
func (c *Client) Me(ctx context.Context) (*model.Identity, error) {
	var identity model.Identity
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &identity); err != nil {
		return nil, fmt.Errorf("client: me: %w", err)
	}
	return &identity, nil
}

// HabitTypes lists the habit type catalog.
func (c *Client) HabitTypes(ctx context.Context) ([]model.HabitType, error) {
	var data struct {
		HabitTypes []model.HabitType `json:"habitTypes"`
	}
	if err := c.doEnvelope(ctx, http.MethodGet, "/habits/types", nil, nil, &data); err != nil {
		return nil, fmt.Errorf("client: habit types: %w", err)
	}
	return data.HabitTypes, nil
}

// HabitEntry is a new entry to log. A nil DateTime lets the server use now.
type HabitEntry struct {
	TypeID   uuid.UUID
	Value    decimal.Decimal
	Unit     string
	Notes    *string
	DateTime *time.Time
}

type habitEntryBody struct {
	TypeID   string          `json:"typeId"`
	Value    decimal.Decimal `json:"value"`
	Unit     string          `json:"unit"`
	Notes    *string         `json:"notes,omitempty"`
	DateTime *string         `json:"dateTime,omitempty"`
}

// CreatedEntry is the server's answer to CreateHabitEntry.
type CreatedEntry struct {
	Entry                model.HabitEntry    `json:"entry"`
	UnlockedAchievements []model.Achievement `json:"unlockedAchievements"`
}

// CreateHabitEntry logs an entry and returns it with any achievements it unlocked.
func (c *Client) CreateHabitEntry(ctx context.Context, entry HabitEntry) (*CreatedEntry, error) {
	body := habitEntryBody{
		TypeID: entry.TypeID.String(),
		Value:  entry.Value,
		Unit:   entry.Unit,
		Notes:  entry.Notes,
	}
	if entry.DateTime != nil {
		at := entry.DateTime.UTC().Format(time.RFC3339Nano)
		body.DateTime = &at
	}

	var created CreatedEntry
	if err := c.doEnvelope(ctx, http.MethodPost, "/habits/entries", nil, body, &created); err != nil {
		return nil, fmt.Errorf("client: create habit entry: %w", err)
	}
	return &created, nil
}

// HabitEntries lists the signed-in user's entries. Zero-valued filter fields are ignored.
func (c *Client) HabitEntries(ctx context.Context, filter model.EntryFilter) ([]model.HabitEntry, error) {
	query := url.Values{}
	if filter.TypeID != nil {
		query.Set("typeId", filter.TypeID.String())
	}
	if filter.From != nil {
		query.Set("from", filter.From.UTC().Format(time.RFC3339Nano))
	}
	if filter.To != nil {
		query.Set("to", filter.To.UTC().Format(time.RFC3339Nano))
	}

	var data struct {
		Entries []model.HabitEntry `json:"entries"`
	}
	if err := c.doEnvelope(ctx, http.MethodGet, "/habits/entries", query, nil, &data); err != nil {
		return nil, fmt.Errorf("client: habit entries: %w", err)
	}
	return data.Entries, nil
}

// ScheduleNotification records a reminder for the signed-in user.
func (c *Client) ScheduleNotification(ctx context.Context, title, body string, at time.Time) (*model.Notification, error) {
	payload := map[string]string{
		"title":        title,
		"body":         body,
		"scheduledFor": at.UTC().Format(time.RFC3339Nano),
	}
	var data struct {
		Notification model.Notification `json:"notification"`
	}
	if err := c.doEnvelope(ctx, http.MethodPost, "/notifications/schedule", nil, payload, &data); err != nil {
		return nil, fmt.Errorf("client: schedule notification: %w", err)
	}
	return &data.Notification, nil
}

func (c *Client) doEnvelope(ctx context.Context, method, path string, query url.Values, body, data any) error {
	envelope := struct {
		Status string `json:"status"`
		Data   any    `json:"data"`
	}{Data: data}
	return c.do(ctx, method, path, query, body, &envelope)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.ClearToken()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Code == "" {
			apiErr.Code = "UNKNOWN"
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
