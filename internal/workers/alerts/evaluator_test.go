package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coinwatch/internal/domain/alert"
	"coinwatch/internal/domain/market"
	"coinwatch/pkg/errors"
)

type MockAlertStore struct {
	mock.Mock
}

func (m *MockAlertStore) ListActive(ctx context.Context) ([]*alert.Alert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*alert.Alert), args.Error(1)
}

func (m *MockAlertStore) MarkTriggered(ctx context.Context, a *alert.Alert, at time.Time) error {
	args := m.Called(ctx, a, at)
	return args.Error(0)
}

type MockMarketFeed struct {
	mock.Mock
}

func (m *MockMarketFeed) BatchMarkets(ctx context.Context, coinIDs []string) ([]market.CoinMarketSnapshot, error) {
	args := m.Called(ctx, coinIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]market.CoinMarketSnapshot), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, a *alert.Alert, snap market.CoinMarketSnapshot) error {
	args := m.Called(ctx, a, snap)
	return args.Error(0)
}

func priceAlert(coinID, threshold string, condition alert.Condition) *alert.Alert {
	return &alert.Alert{
		ID:             uuid.New(),
		AlertName:      "test alert",
		CoinID:         coinID,
		CoinName:       coinID,
		CoinSymbol:     coinID[:3],
		AlertType:      alert.TypePrice,
		Condition:      condition,
		ThresholdValue: threshold,
		Frequency:      alert.FrequencyOnce,
		IsActive:       true,
	}
}

func btcSnapshot(price string) market.CoinMarketSnapshot {
	return market.CoinMarketSnapshot{
		ID:           "bitcoin",
		Symbol:       "btc",
		Name:         "Bitcoin",
		CurrentPrice: decimal.RequireFromString(price),
	}
}

func TestEvaluator_Run_FiresMatchingAlert(t *testing.T) {
	store := new(MockAlertStore)
	feed := new(MockMarketFeed)
	notifier := new(MockNotifier)

	a := priceAlert("bitcoin", "90000", alert.ConditionGreaterThan)
	snap := btcSnapshot("95000")

	store.On("ListActive", mock.Anything).Return([]*alert.Alert{a}, nil)
	feed.On("BatchMarkets", mock.Anything, []string{"bitcoin"}).Return([]market.CoinMarketSnapshot{snap}, nil)
	notifier.On("Notify", mock.Anything, a, snap).Return(nil)
	store.On("MarkTriggered", mock.Anything, a, mock.Anything).Return(nil)

	e := NewEvaluator(store, feed, notifier, time.Minute, true)

	require.NoError(t, e.Run(context.Background()))
	store.AssertExpectations(t)
	feed.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestEvaluator_Run_SkipsNonMatching(t *testing.T) {
	store := new(MockAlertStore)
	feed := new(MockMarketFeed)
	notifier := new(MockNotifier)

	a := priceAlert("bitcoin", "100000", alert.ConditionGreaterThan)

	store.On("ListActive", mock.Anything).Return([]*alert.Alert{a}, nil)
	feed.On("BatchMarkets", mock.Anything, []string{"bitcoin"}).
		Return([]market.CoinMarketSnapshot{btcSnapshot("95000")}, nil)

	e := NewEvaluator(store, feed, notifier, time.Minute, true)

	require.NoError(t, e.Run(context.Background()))
	notifier.AssertNotCalled(t, "Notify")
	store.AssertNotCalled(t, "MarkTriggered")
}

func TestEvaluator_Run_NoActiveAlerts(t *testing.T) {
	store := new(MockAlertStore)
	feed := new(MockMarketFeed)
	notifier := new(MockNotifier)

	store.On("ListActive", mock.Anything).Return([]*alert.Alert{}, nil)

	e := NewEvaluator(store, feed, notifier, time.Minute, true)

	require.NoError(t, e.Run(context.Background()))
	feed.AssertNotCalled(t, "BatchMarkets")
}

func TestEvaluator_Run_BatchesDistinctCoins(t *testing.T) {
	store := new(MockAlertStore)
	feed := new(MockMarketFeed)
	notifier := new(MockNotifier)

	alerts := []*alert.Alert{
		priceAlert("bitcoin", "1", alert.ConditionLessThan),
		priceAlert("bitcoin", "2", alert.ConditionLessThan),
		priceAlert("ethereum", "1", alert.ConditionLessThan),
	}

	store.On("ListActive", mock.Anything).Return(alerts, nil)
	feed.On("BatchMarkets", mock.Anything, []string{"bitcoin", "ethereum"}).
		Return([]market.CoinMarketSnapshot{}, nil)

	e := NewEvaluator(store, feed, notifier, time.Minute, true)

	require.NoError(t, e.Run(context.Background()))
	feed.AssertExpectations(t)
}

func TestEvaluator_Run_SuppressedByFrequency(t *testing.T) {
	store := new(MockAlertStore)
	feed := new(MockMarketFeed)
	notifier := new(MockNotifier)

	recent := time.Now().UTC().Add(-time.Hour)
	a := priceAlert("bitcoin", "90000", alert.ConditionGreaterThan)
	a.Frequency = alert.FrequencyOncePerDay
	a.LastTriggeredAt = &recent

	store.On("ListActive", mock.Anything).Return([]*alert.Alert{a}, nil)
	feed.On("BatchMarkets", mock.Anything, []string{"bitcoin"}).
		Return([]market.CoinMarketSnapshot{btcSnapshot("95000")}, nil)

	e := NewEvaluator(store, feed, notifier, time.Minute, true)

	require.NoError(t, e.Run(context.Background()))
	notifier.AssertNotCalled(t, "Notify")
}

func TestEvaluator_Run_MarksTriggeredDespiteNotifyFailure(t *testing.T) {
	store := new(MockAlertStore)
	feed := new(MockMarketFeed)
	notifier := new(MockNotifier)

	a := priceAlert("bitcoin", "90000", alert.ConditionGreaterThan)
	snap := btcSnapshot("95000")

	store.On("ListActive", mock.Anything).Return([]*alert.Alert{a}, nil)
	feed.On("BatchMarkets", mock.Anything, []string{"bitcoin"}).Return([]market.CoinMarketSnapshot{snap}, nil)
	notifier.On("Notify", mock.Anything, a, snap).Return(errors.New("smtp down"))
	store.On("MarkTriggered", mock.Anything, a, mock.Anything).Return(nil)

	e := NewEvaluator(store, feed, notifier, time.Minute, true)

	require.NoError(t, e.Run(context.Background()))
	store.AssertExpectations(t)
}

func TestEvaluator_Run_FeedErrorPropagates(t *testing.T) {
	store := new(MockAlertStore)
	feed := new(MockMarketFeed)
	notifier := new(MockNotifier)

	store.On("ListActive", mock.Anything).
		Return([]*alert.Alert{priceAlert("bitcoin", "1", alert.ConditionGreaterThan)}, nil)
	feed.On("BatchMarkets", mock.Anything, mock.Anything).
		Return(nil, errors.ErrUpstreamUnavailable)

	e := NewEvaluator(store, feed, notifier, time.Minute, true)

	err := e.Run(context.Background())

	assert.ErrorIs(t, err, errors.ErrUpstreamUnavailable)
}

func TestEvaluator_Run_MissingSnapshotSkipped(t *testing.T) {
	store := new(MockAlertStore)
	feed := new(MockMarketFeed)
	notifier := new(MockNotifier)

	a := priceAlert("delisted-coin", "1", alert.ConditionGreaterThan)

	store.On("ListActive", mock.Anything).Return([]*alert.Alert{a}, nil)
	feed.On("BatchMarkets", mock.Anything, []string{"delisted-coin"}).
		Return([]market.CoinMarketSnapshot{}, nil)

	e := NewEvaluator(store, feed, notifier, time.Minute, true)

	require.NoError(t, e.Run(context.Background()))
	notifier.AssertNotCalled(t, "Notify")
}
