package alerts

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"coinwatch/internal/adapters/email"
	"coinwatch/internal/domain/alert"
	"coinwatch/internal/domain/market"
	"coinwatch/internal/domain/user"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

// Notifier delivers a fired alert to its owner
type Notifier interface {
	Notify(ctx context.Context, a *alert.Alert, snap market.CoinMarketSnapshot) error
}

// LogNotifier writes fired alerts to the log. It backs deployments
// without an email provider and doubles as the anonymous-alert sink.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "alert_notifier")}
}

// Notify logs the fired alert
func (n *LogNotifier) Notify(ctx context.Context, a *alert.Alert, snap market.CoinMarketSnapshot) error {
	n.log.Infow("Alert fired",
		"alert_id", a.ID,
		"alert_name", a.AlertName,
		"coin_id", a.CoinID,
		"observed", observedValue(a, snap),
		"condition", a.Condition,
		"threshold", a.ThresholdValue,
	)
	return nil
}

// EmailNotifier emails fired alerts to the owning user. Alerts without
// an owner fall back to the log notifier.
type EmailNotifier struct {
	sender   email.Sender
	users    user.Repository
	fallback *LogNotifier
	log      *logger.Logger
}

// NewEmailNotifier creates an email notifier
func NewEmailNotifier(sender email.Sender, users user.Repository, log *logger.Logger) *EmailNotifier {
	return &EmailNotifier{
		sender:   sender,
		users:    users,
		fallback: NewLogNotifier(log),
		log:      log.With("component", "alert_email_notifier"),
	}
}

// Notify emails the alert owner, or logs when there is no owner
func (n *EmailNotifier) Notify(ctx context.Context, a *alert.Alert, snap market.CoinMarketSnapshot) error {
	if a.UserID == nil {
		return n.fallback.Notify(ctx, a, snap)
	}

	usr, err := n.users.GetByID(ctx, *a.UserID)
	if err != nil {
		return errors.Wrap(err, "resolve alert owner")
	}

	subject := fmt.Sprintf("%s: %s alert for %s", a.AlertName, a.AlertType, a.CoinName)
	body := renderAlertEmail(a, snap)

	id, err := n.sender.Send(ctx, email.Message{
		To:      []string{usr.Email},
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		return errors.Wrap(err, "send alert email")
	}

	n.log.Infow("Alert email sent",
		"alert_id", a.ID,
		"email_id", id,
	)
	return nil
}

func observedValue(a *alert.Alert, snap market.CoinMarketSnapshot) string {
	switch a.AlertType {
	case alert.TypePercentageChange:
		return fmt.Sprintf("%s%%", snap.PriceChangePct24h.StringFixed(2))
	case alert.TypeVolume:
		return humanize.Commaf(snap.TotalVolume.InexactFloat64())
	case alert.TypeMarketCap:
		return humanize.Commaf(snap.MarketCap.InexactFloat64())
	default:
		return "$" + humanize.CommafWithDigits(snap.CurrentPrice.InexactFloat64(), 2)
	}
}

func conditionPhrase(c alert.Condition) string {
	switch c {
	case alert.ConditionGreaterThan:
		return "rose above"
	case alert.ConditionLessThan:
		return "dropped below"
	case alert.ConditionEqualTo:
		return "reached"
	case alert.ConditionGreaterThanOrEqual:
		return "reached or exceeded"
	case alert.ConditionLessThanOrEqual:
		return "fell to or below"
	default:
		return string(c)
	}
}

func renderAlertEmail(a *alert.Alert, snap market.CoinMarketSnapshot) string {
	symbol := strings.ToUpper(a.CoinSymbol)
	return fmt.Sprintf(
		`<h2>%s</h2>
<p>%s (%s) %s your threshold of %s.</p>
<p>Current value: <strong>%s</strong></p>
<p>Price: $%s &middot; 24h change: %s%%</p>`,
		a.AlertName,
		a.CoinName, symbol,
		conditionPhrase(a.Condition),
		a.ThresholdValue,
		observedValue(a, snap),
		humanize.CommafWithDigits(snap.CurrentPrice.InexactFloat64(), 2),
		snap.PriceChangePct24h.StringFixed(2),
	)
}
