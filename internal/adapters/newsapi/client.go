package newsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"coinwatch/internal/domain/news"
	"coinwatch/pkg/errors"
)

const (
	everythingPath     = "/v2/everything"
	defaultHTTPTimeout = 10 * time.Second
)

// Client fetches articles from the NewsAPI "everything" endpoint with
// an injected credential. Responses are never cached: news queries are
// always served fresh. No retry or backoff.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config configures the NewsAPI client
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new NewsAPI client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Everything searches articles matching the query and returns the
// requested page. Upstream non-2xx responses surface as
// *errors.UpstreamError with the upstream status code.
func (c *Client) Everything(ctx context.Context, query string, page, pageSize int) (*news.Page, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+everythingPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build news request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnavailable, "news request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewUpstreamError(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var decoded struct {
		Status       string         `json:"status"`
		TotalResults int            `json:"totalResults"`
		Articles     []news.Article `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnavailable, "decode news response: %v", err)
	}

	articles := decoded.Articles
	if articles == nil {
		articles = []news.Article{}
	}

	return &news.Page{
		Articles:     articles,
		TotalResults: decoded.TotalResults,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}
