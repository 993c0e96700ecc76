package marketdata

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"coinwatch/internal/domain/market"
	"coinwatch/internal/metrics"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

const cacheName = "coingecko"

// Upstream fetches raw response bodies from the market data API
type Upstream interface {
	Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

// Cache stores raw response bodies for a freshness window
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration)
}

// Service serves market data with a short-lived shared cache in front of
// the upstream API. Concurrent requests for the same endpoint collapse
// into a single upstream call.
type Service struct {
	upstream Upstream
	cache    Cache
	ttl      time.Duration
	chartTTL time.Duration
	group    singleflight.Group
	log      *logger.Logger
}

// NewService creates a new market data service.
// cache may be nil, in which case every request goes upstream.
func NewService(upstream Upstream, cache Cache, ttl, chartTTL time.Duration, log *logger.Logger) *Service {
	return &Service{
		upstream: upstream,
		cache:    cache,
		ttl:      ttl,
		chartTTL: chartTTL,
		log:      log.With("service", "marketdata"),
	}
}

// Raw returns the upstream response body for an endpoint, serving from
// cache while the body is fresh. The body is passed through verbatim.
func (s *Service) Raw(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if endpoint == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "endpoint is required")
	}

	key := endpoint
	if encoded := params.Encode(); encoded != "" {
		key += "?" + encoded
	}

	if s.cache != nil {
		if body, err := s.cache.Get(ctx, key); err == nil {
			metrics.RecordCacheLookup(cacheName, true)
			return body, nil
		}
		metrics.RecordCacheLookup(cacheName, false)
	}

	body, err, _ := s.group.Do(key, func() (interface{}, error) {
		start := time.Now()
		data, err := s.upstream.Get(ctx, endpoint, params)
		metrics.RecordUpstreamCall(cacheName, time.Since(start), err)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			s.cache.Set(ctx, key, data, s.ttlFor(endpoint))
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return body.([]byte), nil
}

// Chart series change faster than market listings, so they age out sooner
func (s *Service) ttlFor(endpoint string) time.Duration {
	if strings.Contains(endpoint, "/market_chart") {
		return s.chartTTL
	}
	return s.ttl
}

// CoinsByCategory lists coins of one market category ordered by market cap
func (s *Service) CoinsByCategory(ctx context.Context, category string, perPage, page int) ([]market.CoinMarketSnapshot, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")
	if category != "" {
		params.Set("category", category)
	}
	if perPage > 0 {
		params.Set("per_page", strconv.Itoa(perPage))
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	return s.markets(ctx, params)
}

// BatchMarkets fetches market snapshots for a set of coin IDs in one call
func (s *Service) BatchMarkets(ctx context.Context, coinIDs []string) ([]market.CoinMarketSnapshot, error) {
	if len(coinIDs) == 0 {
		return []market.CoinMarketSnapshot{}, nil
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("ids", strings.Join(coinIDs, ","))
	params.Set("order", "market_cap_desc")
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")

	return s.markets(ctx, params)
}

// CoinByID fetches the market snapshot for a single coin
func (s *Service) CoinByID(ctx context.Context, coinID string) (*market.CoinMarketSnapshot, error) {
	if coinID == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "coin id is required")
	}

	snapshots, err := s.BatchMarkets(ctx, []string{coinID})
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "coin %s", coinID)
	}

	return &snapshots[0], nil
}

// MarketChart fetches the historical price series for a coin.
// days follows the upstream convention ("1", "7", "30", "max").
// interval is optional ("hourly", "daily"); empty lets upstream choose.
func (s *Service) MarketChart(ctx context.Context, coinID, days, interval string) (*market.ChartSeries, error) {
	if coinID == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "coin id is required")
	}
	if days == "" {
		days = "7"
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", days)
	if interval != "" {
		params.Set("interval", interval)
	}

	body, err := s.Raw(ctx, "/coins/"+coinID+"/market_chart", params)
	if err != nil {
		return nil, err
	}

	var series market.ChartSeries
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, errors.Wrap(err, "decode market chart")
	}

	return &series, nil
}

// Trending fetches the currently trending coins
func (s *Service) Trending(ctx context.Context) ([]market.TrendingCoin, error) {
	body, err := s.Raw(ctx, "/search/trending", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Coins []struct {
			Item market.TrendingCoin `json:"item"`
		} `json:"coins"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, "decode trending response")
	}

	coins := make([]market.TrendingCoin, 0, len(envelope.Coins))
	for _, c := range envelope.Coins {
		coins = append(coins, c.Item)
	}

	return coins, nil
}

// Search looks up coins by name or symbol
func (s *Service) Search(ctx context.Context, query string) (*market.SearchResult, error) {
	if query == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "query is required")
	}

	params := url.Values{}
	params.Set("query", query)

	body, err := s.Raw(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var result market.SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, "decode search response")
	}

	return &result, nil
}

func (s *Service) markets(ctx context.Context, params url.Values) ([]market.CoinMarketSnapshot, error) {
	body, err := s.Raw(ctx, "/coins/markets", params)
	if err != nil {
		return nil, err
	}

	var snapshots []market.CoinMarketSnapshot
	if err := json.Unmarshal(body, &snapshots); err != nil {
		return nil, errors.Wrap(err, "decode markets response")
	}

	return snapshots, nil
}

