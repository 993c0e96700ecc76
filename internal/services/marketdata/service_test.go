package marketdata

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

type fakeUpstream struct {
	mu        sync.Mutex
	calls     int32
	responses map[string][]byte
	err       error
}

func (f *fakeUpstream) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}

	key := endpoint
	if encoded := params.Encode(); encoded != "" {
		key += "?" + encoded
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if body, ok := f.responses[key]; ok {
		return body, nil
	}
	return []byte(`{}`), nil
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if body, ok := c.data[key]; ok {
		return body, nil
	}
	return nil, pkgerrors.ErrCacheMiss
}

func (c *memoryCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = body
	c.ttls[key] = ttl
}

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{SugaredLogger: zapLogger.Sugar()}
}

func TestService_Raw_CachesResponses(t *testing.T) {
	upstream := &fakeUpstream{
		responses: map[string][]byte{
			"/coins/bitcoin": []byte(`{"id":"bitcoin"}`),
		},
	}
	cache := newMemoryCache()
	svc := NewService(upstream, cache, time.Minute, 30*time.Second, testLogger())

	body, err := svc.Raw(context.Background(), "/coins/bitcoin", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"bitcoin"}`, string(body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&upstream.calls))

	// Second read serves from cache
	body, err = svc.Raw(context.Background(), "/coins/bitcoin", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"bitcoin"}`, string(body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&upstream.calls))
}

func TestService_Raw_EmptyEndpoint(t *testing.T) {
	svc := NewService(&fakeUpstream{}, nil, time.Minute, 30*time.Second, testLogger())

	_, err := svc.Raw(context.Background(), "", nil)

	assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
}

func TestService_Raw_ChartEndpointsUseShorterTTL(t *testing.T) {
	upstream := &fakeUpstream{responses: map[string][]byte{}}
	cache := newMemoryCache()
	svc := NewService(upstream, cache, time.Minute, 30*time.Second, testLogger())

	_, err := svc.Raw(context.Background(), "/coins/bitcoin/market_chart", nil)
	require.NoError(t, err)
	_, err = svc.Raw(context.Background(), "/coins/markets", nil)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cache.ttls["/coins/bitcoin/market_chart"])
	assert.Equal(t, time.Minute, cache.ttls["/coins/markets"])
}

func TestService_Raw_DistinctParamsAreDistinctKeys(t *testing.T) {
	upstream := &fakeUpstream{
		responses: map[string][]byte{
			"/coins/markets?vs_currency=usd": []byte(`[{"id":"bitcoin"}]`),
			"/coins/markets?vs_currency=eur": []byte(`[{"id":"ethereum"}]`),
		},
	}
	cache := newMemoryCache()
	svc := NewService(upstream, cache, time.Minute, 30*time.Second, testLogger())

	usd, err := svc.Raw(context.Background(), "/coins/markets", url.Values{"vs_currency": {"usd"}})
	require.NoError(t, err)
	eur, err := svc.Raw(context.Background(), "/coins/markets", url.Values{"vs_currency": {"eur"}})
	require.NoError(t, err)

	assert.NotEqual(t, string(usd), string(eur))
	assert.Equal(t, int32(2), atomic.LoadInt32(&upstream.calls))
}

func TestService_Raw_UpstreamErrorNotCached(t *testing.T) {
	upstream := &fakeUpstream{err: pkgerrors.NewUpstreamError(429, "Too Many Requests")}
	cache := newMemoryCache()
	svc := NewService(upstream, cache, time.Minute, 30*time.Second, testLogger())

	_, err := svc.Raw(context.Background(), "/coins/markets", nil)

	assert.ErrorIs(t, err, pkgerrors.ErrUpstreamStatus)
	assert.Empty(t, cache.data)
}

func TestService_CoinByID(t *testing.T) {
	upstream := &fakeUpstream{
		responses: map[string][]byte{
			"/coins/markets?ids=bitcoin&order=market_cap_desc&price_change_percentage=24h&sparkline=false&vs_currency=usd": []byte(
				`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":50000}]`),
		},
	}
	svc := NewService(upstream, nil, time.Minute, 30*time.Second, testLogger())

	snap, err := svc.CoinByID(context.Background(), "bitcoin")

	require.NoError(t, err)
	assert.Equal(t, "bitcoin", snap.ID)
	assert.Equal(t, "btc", snap.Symbol)
	assert.Equal(t, "50000", snap.CurrentPrice.String())
}

func TestService_CoinByID_UnknownCoin(t *testing.T) {
	upstream := &fakeUpstream{
		responses: map[string][]byte{
			"/coins/markets?ids=no-such-coin&order=market_cap_desc&price_change_percentage=24h&sparkline=false&vs_currency=usd": []byte(`[]`),
		},
	}
	svc := NewService(upstream, nil, time.Minute, 30*time.Second, testLogger())

	_, err := svc.CoinByID(context.Background(), "no-such-coin")

	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestService_BatchMarkets_EmptyInput(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := NewService(upstream, nil, time.Minute, 30*time.Second, testLogger())

	snaps, err := svc.BatchMarkets(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, snaps)
	assert.Equal(t, int32(0), atomic.LoadInt32(&upstream.calls))
}

// blockingUpstream parks every Get until release is closed, so
// concurrent callers pile up on the same in-flight request
type blockingUpstream struct {
	calls   int32
	entered chan struct{}
	release chan struct{}
}

func (b *blockingUpstream) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	atomic.AddInt32(&b.calls, 1)
	b.entered <- struct{}{}
	<-b.release
	return []byte(`{"id":"bitcoin"}`), nil
}

func TestService_Raw_ConcurrentCallersShareOneFlight(t *testing.T) {
	const callers = 8

	upstream := &blockingUpstream{
		entered: make(chan struct{}, callers),
		release: make(chan struct{}),
	}
	svc := NewService(upstream, nil, time.Minute, 30*time.Second, testLogger())

	var wg sync.WaitGroup
	bodies := make([][]byte, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bodies[i], errs[i] = svc.Raw(context.Background(), "/coins/bitcoin", nil)
		}(i)
	}

	// Wait until the first caller reaches the upstream, then let the
	// remaining goroutines join the flight before releasing it.
	<-upstream.entered
	time.Sleep(100 * time.Millisecond)
	close(upstream.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&upstream.calls))
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.JSONEq(t, `{"id":"bitcoin"}`, string(bodies[i]))
	}
}

func TestService_MarketChart(t *testing.T) {
	upstream := &fakeUpstream{
		responses: map[string][]byte{
			"/coins/bitcoin/market_chart?days=7&vs_currency=usd": []byte(
				`{"prices":[[1700000000000,50000.5],[1700000060000,50100]],"market_caps":[],"total_volumes":[]}`),
		},
	}
	svc := NewService(upstream, nil, time.Minute, 30*time.Second, testLogger())

	series, err := svc.MarketChart(context.Background(), "bitcoin", "", "")

	require.NoError(t, err)
	require.Len(t, series.Prices, 2)
	assert.Equal(t, int64(1700000000000), series.Prices[0].Timestamp)
	assert.Equal(t, "50000.5", series.Prices[0].Value.String())
}

func TestService_MarketChart_Interval(t *testing.T) {
	upstream := &fakeUpstream{
		responses: map[string][]byte{
			"/coins/bitcoin/market_chart?days=1&interval=hourly&vs_currency=usd": []byte(
				`{"prices":[[1700000000000,50000]],"market_caps":[],"total_volumes":[]}`),
		},
	}
	cache := newMemoryCache()
	svc := NewService(upstream, cache, time.Minute, 30*time.Second, testLogger())

	series, err := svc.MarketChart(context.Background(), "bitcoin", "1", "hourly")

	require.NoError(t, err)
	require.Len(t, series.Prices, 1)

	// interval participates in the cache key, so hourly and daily
	// series for the same day range never collide
	_, err = svc.MarketChart(context.Background(), "bitcoin", "1", "daily")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&upstream.calls))
	assert.Contains(t, cache.data, "/coins/bitcoin/market_chart?days=1&interval=hourly&vs_currency=usd")
	assert.Contains(t, cache.data, "/coins/bitcoin/market_chart?days=1&interval=daily&vs_currency=usd")
}

func TestService_Trending(t *testing.T) {
	upstream := &fakeUpstream{
		responses: map[string][]byte{
			"/search/trending": []byte(
				`{"coins":[{"item":{"id":"solana","name":"Solana","symbol":"SOL","market_cap_rank":5}}]}`),
		},
	}
	svc := NewService(upstream, nil, time.Minute, 30*time.Second, testLogger())

	coins, err := svc.Trending(context.Background())

	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.Equal(t, "solana", coins[0].ID)
	assert.Equal(t, 5, coins[0].MarketCapRank)
}

func TestService_Search(t *testing.T) {
	upstream := &fakeUpstream{
		responses: map[string][]byte{
			"/search?query=bit": []byte(
				`{"coins":[{"id":"bitcoin","name":"Bitcoin","symbol":"BTC","market_cap_rank":1}]}`),
		},
	}
	svc := NewService(upstream, nil, time.Minute, 30*time.Second, testLogger())

	result, err := svc.Search(context.Background(), "bit")

	require.NoError(t, err)
	require.Len(t, result.Coins, 1)
	assert.Equal(t, "bitcoin", result.Coins[0].ID)
}

func TestService_Search_EmptyQuery(t *testing.T) {
	svc := NewService(&fakeUpstream{}, nil, time.Minute, 30*time.Second, testLogger())

	_, err := svc.Search(context.Background(), "")

	assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
}
