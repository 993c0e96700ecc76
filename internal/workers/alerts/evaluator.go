package alerts

import (
	"context"
	"time"

	"coinwatch/internal/domain/alert"
	"coinwatch/internal/domain/market"
	"coinwatch/internal/metrics"
	"coinwatch/internal/workers"
	"coinwatch/pkg/errors"
)

// AlertStore is the slice of the alert service the evaluator needs
type AlertStore interface {
	ListActive(ctx context.Context) ([]*alert.Alert, error)
	MarkTriggered(ctx context.Context, a *alert.Alert, at time.Time) error
}

// MarketFeed provides current snapshots for a batch of coins
type MarketFeed interface {
	BatchMarkets(ctx context.Context, coinIDs []string) ([]market.CoinMarketSnapshot, error)
}

// Evaluator sweeps active alert rules against current market data.
// One upstream call per sweep covers every watched coin.
type Evaluator struct {
	*workers.BaseWorker
	alerts   AlertStore
	feed     MarketFeed
	notifier Notifier
	now      func() time.Time
}

// NewEvaluator creates the alert evaluation worker
func NewEvaluator(alerts AlertStore, feed MarketFeed, notifier Notifier, interval time.Duration, enabled bool) *Evaluator {
	return &Evaluator{
		BaseWorker: workers.NewBaseWorker("alert_evaluator", interval, enabled),
		alerts:     alerts,
		feed:       feed,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Run executes one evaluation sweep
func (e *Evaluator) Run(ctx context.Context) error {
	start := time.Now()

	active, err := e.alerts.ListActive(ctx)
	if err != nil {
		e.RecordError(err, time.Since(start))
		return errors.Wrap(err, "list active alerts")
	}
	if len(active) == 0 {
		e.RecordRun(time.Since(start))
		return nil
	}

	snapshots, err := e.feed.BatchMarkets(ctx, distinctCoinIDs(active))
	if err != nil {
		e.RecordError(err, time.Since(start))
		return errors.Wrap(err, "fetch market snapshots")
	}

	byCoin := make(map[string]market.CoinMarketSnapshot, len(snapshots))
	for _, snap := range snapshots {
		byCoin[snap.ID] = snap
	}

	now := e.now().UTC()
	fired := 0

	for _, a := range active {
		snap, ok := byCoin[a.CoinID]
		if !ok {
			// Coin vanished upstream; leave the rule alone
			e.Log().Debugw("No snapshot for alert coin", "alert_id", a.ID, "coin_id", a.CoinID)
			continue
		}

		matches, err := a.Matches(snap)
		if err != nil {
			e.Log().Warnw("Alert evaluation failed", "alert_id", a.ID, "error", err)
			continue
		}
		if !matches || !a.Due(now) {
			continue
		}

		if err := e.notifier.Notify(ctx, a, snap); err != nil {
			// Delivery failure must not swallow the trigger record,
			// otherwise "once" alerts would re-fire forever
			e.Log().Errorf("Alert notification failed for %s: %v", a.ID, err)
		}

		if err := e.alerts.MarkTriggered(ctx, a, now); err != nil {
			e.Log().Errorf("Mark triggered failed for %s: %v", a.ID, err)
			continue
		}

		metrics.RecordAlertTriggered(string(a.AlertType), string(a.Frequency))
		fired++
	}

	if fired > 0 {
		e.Log().Infow("Evaluation sweep complete",
			"active", len(active),
			"fired", fired,
			"duration", time.Since(start),
		)
	}

	e.RecordRun(time.Since(start))
	return nil
}

func distinctCoinIDs(alerts []*alert.Alert) []string {
	seen := make(map[string]struct{}, len(alerts))
	ids := make([]string, 0, len(alerts))
	for _, a := range alerts {
		if _, ok := seen[a.CoinID]; ok {
			continue
		}
		seen[a.CoinID] = struct{}{}
		ids = append(ids, a.CoinID)
	}
	return ids
}
