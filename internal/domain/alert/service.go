package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

// CreateInput contains data for creating an alert
type CreateInput struct {
	UserID         *uuid.UUID
	AlertName      string
	CoinID         string
	CoinName       string
	CoinSymbol     string
	AlertType      Type
	Condition      Condition
	ThresholdValue string
	Frequency      Frequency
}

// UpdateInput contains partial fields merged into an existing alert.
// Nil fields are left untouched; id and createdAt never change.
type UpdateInput struct {
	AlertName      *string
	AlertType      *Type
	Condition      *Condition
	ThresholdValue *string
	Frequency      *Frequency
	IsActive       *bool
}

// Service coordinates alert rule operations
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService constructs an alert service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Get().With("component", "alert_service"),
	}
}

// Create stores a new alert rule. The identifier and creation
// timestamp are generated here and isActive defaults to true.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Alert, error) {
	if input.CoinID == "" || input.AlertName == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "alertName and coinId are required")
	}
	if !input.AlertType.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown alert type %q", input.AlertType)
	}
	if !input.Condition.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown condition %q", input.Condition)
	}
	if !input.Frequency.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown frequency %q", input.Frequency)
	}
	if _, err := decimal.NewFromString(input.ThresholdValue); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "threshold %q is not numeric", input.ThresholdValue)
	}

	a := &Alert{
		ID:             uuid.New(),
		UserID:         input.UserID,
		AlertName:      input.AlertName,
		CoinID:         input.CoinID,
		CoinName:       input.CoinName,
		CoinSymbol:     input.CoinSymbol,
		AlertType:      input.AlertType,
		Condition:      input.Condition,
		ThresholdValue: input.ThresholdValue,
		Frequency:      input.Frequency,
		CreatedAt:      time.Now().UTC(),
		IsActive:       true,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, errors.Wrap(err, "create alert")
	}

	s.log.Infow("Alert created",
		"alert_id", a.ID,
		"coin_id", a.CoinID,
		"type", a.AlertType,
		"condition", a.Condition,
	)

	return a, nil
}

// List returns all alerts for a user (never nil)
func (s *Service) List(ctx context.Context, userID *uuid.UUID) ([]*Alert, error) {
	alerts, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list alerts")
	}
	if alerts == nil {
		alerts = []*Alert{}
	}
	return alerts, nil
}

// ListForCoin returns a user's alerts tied to one coin
func (s *Service) ListForCoin(ctx context.Context, userID *uuid.UUID, coinID string) ([]*Alert, error) {
	if coinID == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "coinId is required")
	}
	alerts, err := s.repo.ListByCoin(ctx, userID, coinID)
	if err != nil {
		return nil, errors.Wrap(err, "list alerts for coin")
	}
	if alerts == nil {
		alerts = []*Alert{}
	}
	return alerts, nil
}

// GetByID retrieves a single alert
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	if id == uuid.Nil {
		return nil, errors.ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// Update merges partial fields into an existing alert
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get alert")
	}

	if input.AlertName != nil {
		a.AlertName = *input.AlertName
	}
	if input.AlertType != nil {
		if !input.AlertType.Valid() {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown alert type %q", *input.AlertType)
		}
		a.AlertType = *input.AlertType
	}
	if input.Condition != nil {
		if !input.Condition.Valid() {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown condition %q", *input.Condition)
		}
		a.Condition = *input.Condition
	}
	if input.ThresholdValue != nil {
		if _, err := decimal.NewFromString(*input.ThresholdValue); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "threshold %q is not numeric", *input.ThresholdValue)
		}
		a.ThresholdValue = *input.ThresholdValue
	}
	if input.Frequency != nil {
		if !input.Frequency.Valid() {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown frequency %q", *input.Frequency)
		}
		a.Frequency = *input.Frequency
	}
	if input.IsActive != nil {
		a.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, errors.Wrap(err, "update alert")
	}

	s.log.Debugw("Alert updated", "alert_id", a.ID)

	return a, nil
}

// Toggle flips the active flag
func (s *Service) Toggle(ctx context.Context, id uuid.UUID) (*Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get alert")
	}

	a.IsActive = !a.IsActive
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, errors.Wrap(err, "toggle alert")
	}

	s.log.Infow("Alert toggled", "alert_id", a.ID, "is_active", a.IsActive)

	return a, nil
}

// Delete removes an alert rule
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.ErrInvalidInput
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete alert")
	}

	s.log.Infow("Alert deleted", "alert_id", id)

	return nil
}

// ListActive returns every active alert for the evaluation sweep
func (s *Service) ListActive(ctx context.Context) ([]*Alert, error) {
	alerts, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list active alerts")
	}
	return alerts, nil
}

// MarkTriggered records a fire. Alerts with frequency "once" are
// deactivated; all others stay active.
func (s *Service) MarkTriggered(ctx context.Context, a *Alert, at time.Time) error {
	stillActive := a.Frequency != FrequencyOnce

	if err := s.repo.MarkTriggered(ctx, a.ID, at, stillActive); err != nil {
		return errors.Wrap(err, "mark alert triggered")
	}

	a.IsActive = stillActive
	triggered := at
	a.LastTriggeredAt = &triggered

	return nil
}
