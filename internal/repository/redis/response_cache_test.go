package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coinwatch/internal/testsupport"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{SugaredLogger: zapLogger.Sugar()}
}

func TestResponseCache_GetSet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := testsupport.NewTestRedis(t)
	cache := NewResponseCache(client, "test:coingecko", testLogger())
	ctx := context.Background()

	_, err := cache.Get(ctx, "/coins/markets?vs_currency=usd")
	assert.ErrorIs(t, err, errors.ErrCacheMiss)

	body := []byte(`[{"id":"bitcoin","current_price":95000}]`)
	cache.Set(ctx, "/coins/markets?vs_currency=usd", body, time.Minute)

	got, err := cache.Get(ctx, "/coins/markets?vs_currency=usd")
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestResponseCache_TTLExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := testsupport.NewTestRedis(t)
	cache := NewResponseCache(client, "test:coingecko", testLogger())
	ctx := context.Background()

	cache.Set(ctx, "short-lived", []byte("x"), 50*time.Millisecond)

	_, err := cache.Get(ctx, "short-lived")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = cache.Get(ctx, "short-lived")
	assert.ErrorIs(t, err, errors.ErrCacheMiss)
}

func TestResponseCache_Invalidate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := testsupport.NewTestRedis(t)
	cache := NewResponseCache(client, "test:coingecko", testLogger())
	ctx := context.Background()

	cache.Set(ctx, "a", []byte("1"), time.Minute)
	cache.Set(ctx, "b", []byte("2"), time.Minute)

	require.NoError(t, cache.Invalidate(ctx, "a", "b"))

	_, err := cache.Get(ctx, "a")
	assert.ErrorIs(t, err, errors.ErrCacheMiss)
	_, err = cache.Get(ctx, "b")
	assert.ErrorIs(t, err, errors.ErrCacheMiss)
}

func TestResponseCache_PrefixIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := testsupport.NewTestRedis(t)
	ctx := context.Background()

	coingecko := NewResponseCache(client, "test:coingecko", testLogger())
	news := NewResponseCache(client, "test:news", testLogger())

	coingecko.Set(ctx, "shared-key", []byte("markets"), time.Minute)

	_, err := news.Get(ctx, "shared-key")
	assert.ErrorIs(t, err, errors.ErrCacheMiss)
}
