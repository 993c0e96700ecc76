package alert

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coinwatch/internal/domain/market"
	"coinwatch/pkg/errors"
)

// Type is the market quantity an alert watches
type Type string

const (
	TypePrice            Type = "price"
	TypePercentageChange Type = "percentage_change"
	TypeVolume           Type = "volume"
	TypeMarketCap        Type = "market_cap"
)

// Valid reports whether the alert type is known
func (t Type) Valid() bool {
	switch t {
	case TypePrice, TypePercentageChange, TypeVolume, TypeMarketCap:
		return true
	}
	return false
}

// Condition is the comparison applied against the threshold
type Condition string

const (
	ConditionGreaterThan        Condition = "greater_than"
	ConditionLessThan           Condition = "less_than"
	ConditionEqualTo            Condition = "equal_to"
	ConditionGreaterThanOrEqual Condition = "greater_than_or_equal"
	ConditionLessThanOrEqual    Condition = "less_than_or_equal"
)

// Valid reports whether the condition is known
func (c Condition) Valid() bool {
	switch c {
	case ConditionGreaterThan, ConditionLessThan, ConditionEqualTo,
		ConditionGreaterThanOrEqual, ConditionLessThanOrEqual:
		return true
	}
	return false
}

// Frequency controls how often a triggered alert re-fires
type Frequency string

const (
	FrequencyOnce       Frequency = "once"
	FrequencyOncePerDay Frequency = "once_per_day"
	FrequencyEveryTime  Frequency = "every_time"
)

// Valid reports whether the frequency is known
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyOncePerDay, FrequencyEveryTime:
		return true
	}
	return false
}

// Alert is a user-defined threshold rule tied to a coin.
// ThresholdValue is kept as a numeric string and parsed with decimal
// at evaluation time so user input round-trips exactly.
type Alert struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	UserID          *uuid.UUID `db:"user_id" json:"userId,omitempty"`
	AlertName       string     `db:"alert_name" json:"alertName"`
	CoinID          string     `db:"coin_id" json:"coinId"`
	CoinName        string     `db:"coin_name" json:"coinName"`
	CoinSymbol      string     `db:"coin_symbol" json:"coinSymbol"`
	AlertType       Type       `db:"alert_type" json:"alertType"`
	Condition       Condition  `db:"condition" json:"condition"`
	ThresholdValue  string     `db:"threshold_value" json:"thresholdValue"`
	Frequency       Frequency  `db:"frequency" json:"frequency"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	IsActive        bool       `db:"is_active" json:"isActive"`
	LastTriggeredAt *time.Time `db:"last_triggered_at" json:"lastTriggeredAt,omitempty"`
}

// Threshold parses the stored numeric string
func (a *Alert) Threshold() (decimal.Decimal, error) {
	value, err := decimal.NewFromString(a.ThresholdValue)
	if err != nil {
		return decimal.Zero, errors.Wrapf(errors.ErrInvalidInput, "threshold %q is not numeric", a.ThresholdValue)
	}
	return value, nil
}

// Matches evaluates the alert against a market snapshot
func (a *Alert) Matches(snap market.CoinMarketSnapshot) (bool, error) {
	threshold, err := a.Threshold()
	if err != nil {
		return false, err
	}

	var observed decimal.Decimal
	switch a.AlertType {
	case TypePrice:
		observed = snap.CurrentPrice
	case TypePercentageChange:
		observed = snap.PriceChangePct24h
	case TypeVolume:
		observed = snap.TotalVolume
	case TypeMarketCap:
		observed = snap.MarketCap
	default:
		return false, errors.Wrapf(errors.ErrInvalidInput, "unknown alert type %q", a.AlertType)
	}

	switch a.Condition {
	case ConditionGreaterThan:
		return observed.GreaterThan(threshold), nil
	case ConditionLessThan:
		return observed.LessThan(threshold), nil
	case ConditionEqualTo:
		return observed.Equal(threshold), nil
	case ConditionGreaterThanOrEqual:
		return observed.GreaterThanOrEqual(threshold), nil
	case ConditionLessThanOrEqual:
		return observed.LessThanOrEqual(threshold), nil
	default:
		return false, errors.Wrapf(errors.ErrInvalidInput, "unknown condition %q", a.Condition)
	}
}

// Due reports whether a matching alert should fire now, applying the
// frequency semantics: "once" fires while active (and is deactivated
// after firing), "once_per_day" suppresses re-fires within 24h,
// "every_time" fires on every evaluation.
func (a *Alert) Due(now time.Time) bool {
	if !a.IsActive {
		return false
	}

	switch a.Frequency {
	case FrequencyOncePerDay:
		return a.LastTriggeredAt == nil || now.Sub(*a.LastTriggeredAt) >= 24*time.Hour
	default:
		return true
	}
}
