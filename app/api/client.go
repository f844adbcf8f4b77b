// Package api wraps the external ERP REST API. It owns base URL
// resolution, bearer token injection and response envelope probing;
// retry policy and error recovery stay with the callers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenProvider yields the current bearer token, empty when logged out
type TokenProvider func() string

// Client is the single HTTP client every other component goes through
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
}

// ResolveBaseURL normalizes a configured API URL: trailing slashes are
// trimmed and the fixed /api segment appended unless already present.
// An empty configuration resolves to a bare /api (reverse-proxy setup).
func ResolveBaseURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "/api"
	}
	if strings.HasSuffix(trimmed, "/api") {
		return trimmed
	}
	return trimmed + "/api"
}

// NewClient creates a client for the given ERP base URL. tokens may be
// nil for unauthenticated use (login).
func NewClient(rawURL string, tokens TokenProvider) *Client {
	return &Client{
		baseURL: ResolveBaseURL(rawURL),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
	}
}

// BaseURL returns the resolved base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Error is a non-2xx API response with a best-effort message probed
// from the body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error (%d)", e.Status)
}

// probeMessage pulls a human-readable message out of an error body
func probeMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Detail
}

// do performs one request. The bearer token is attached when the
// provider yields one; failures are returned to the caller untranslated.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("could not encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &Error{Status: resp.StatusCode, Message: probeMessage(body)}
	}

	return body, nil
}

// Get performs a GET request against the API
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post performs a POST request against the API
func (c *Client) Post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, payload)
}

// Patch performs a PATCH request against the API
func (c *Client) Patch(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, path, nil, payload)
}
