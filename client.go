// Package pushbullet is a client for the PushBullet v2 REST API.
//
// Create a Client with an access token from the PushBullet account settings,
// then call its methods. Every method takes a context and blocks only the
// calling goroutine; run calls concurrently with goroutines if needed.
package pushbullet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.pushbullet.com/v2"
	tokenHeader    = "Access-Token"
	defaultTimeout = 30 * time.Second
)

// Client represents a PushBullet API client.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

var _ ClientAPI = (*Client)(nil)

// Option customizes a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL overrides the API base URL. Useful for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// NewClient creates a new PushBullet client with the given access token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	if !validHeaderValue(token) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}

	client := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// GetUser retrieves information about the authenticated user.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return &user, nil
}

// ListDevices retrieves the account's devices. Deleted devices are included
// with Active set to false.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var result listDevicesResponse
	if err := c.call(ctx, http.MethodGet, "/devices", nil, &result); err != nil {
		return nil, fmt.Errorf("error listing devices: %w", err)
	}
	return result.Devices, nil
}

// Push sends data to a target. Use TargetSelf, TargetDevice, TargetEmail,
// TargetChannel or TargetClient to select the recipient and Note, Link or
// File as the content.
func (c *Client) Push(ctx context.Context, target PushTarget, data PushData) error {
	payload := make(map[string]any)
	data.apply(payload)
	target.apply(payload)

	if err := c.call(ctx, http.MethodPost, "/pushes", payload, nil); err != nil {
		return fmt.Errorf("error creating push: %w", err)
	}
	return nil
}

// call executes a JSON API request and decodes the response into out.
// A nil reqBody sends no body; a nil out discards the success payload.
func (c *Client) call(ctx context.Context, method, path string, reqBody, out any) error {
	var body io.Reader
	contentType := ""
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.doRequest(ctx, method, c.baseURL+path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// doRequest executes an HTTP request carrying the access token header.
func (c *Client) doRequest(ctx context.Context, method, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	req.Header.Set(tokenHeader, c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// decodeResponse classifies a response as success or failure and decodes the
// success payload into out. The API reports failures as an error object in
// the body, occasionally with a 2xx status, so the body is inspected before
// the status code.
func decodeResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}

	var envelope struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != nil {
		return &APIError{
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: data}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}

// validHeaderValue reports whether s can be sent as an HTTP header value.
func validHeaderValue(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < ' ' || b == 0x7f {
			return false
		}
	}
	return true
}
