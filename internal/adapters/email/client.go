package email

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"coinwatch/internal/adapters/config"
	"coinwatch/pkg/errors"
)

const (
	sendPath           = "/emails"
	defaultHTTPTimeout = 10 * time.Second
)

// ErrNotConfigured is returned when no provider API key is set
var ErrNotConfigured = errors.New("email provider not configured")

// Message is a transactional email
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// Sender abstracts the transactional email provider
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Compile-time check
var _ Sender = (*Client)(nil)

// Client sends transactional email through a Resend-compatible HTTP API
type Client struct {
	baseURL     string
	apiKey      string
	fromAddress string
	httpClient  *http.Client
}

// NewClient creates a new email client
func NewClient(cfg config.EmailConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		fromAddress: cfg.FromAddress,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a provider API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Send delivers a message and returns the provider-assigned ID
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return "", errors.Wrap(errors.ErrInvalidInput, "recipient is required")
	}

	payload := struct {
		From string `json:"from"`
		Message
	}{
		From:    c.fromAddress,
		Message: msg,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "encode email payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build email request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(errors.ErrUpstreamUnavailable, "email request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.NewUpstreamError(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.Wrapf(errors.ErrUpstreamUnavailable, "decode email response: %v", err)
	}

	return decoded.ID, nil
}
