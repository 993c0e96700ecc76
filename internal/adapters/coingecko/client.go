package coingecko

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"coinwatch/internal/adapters/config"
	"coinwatch/pkg/errors"
)

const (
	apiPrefix          = "/api/v3"
	defaultHTTPTimeout = 10 * time.Second
)

// Client is a thin pass-through client for the CoinGecko REST API.
// It forwards an endpoint path plus query parameters and returns the
// response body verbatim, so proxy handlers preserve upstream JSON
// byte-for-byte. No retry, no backoff, no circuit breaking; a local
// rate limiter keeps call volume inside the upstream quota.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new CoinGecko client
func NewClient(cfg config.CoinGeckoConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
	}
}

// Get fetches an API endpoint (e.g. "/coins/bitcoin") with the given
// query parameters and returns the raw response body.
// Upstream non-2xx responses surface as *errors.UpstreamError carrying
// the upstream status code; transport failures are wrapped as
// ErrUpstreamUnavailable.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if endpoint == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "endpoint is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "coingecko rate limiter")
	}

	reqURL := c.baseURL + apiPrefix + endpoint
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build coingecko request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnavailable, "coingecko request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewUpstreamError(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnavailable, "read coingecko response: %v", err)
	}

	return body, nil
}
