package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"coinwatch/internal/domain/alert"
	"coinwatch/pkg/errors"
)

// Compile-time check
var _ alert.Repository = (*AlertRepository)(nil)

// AlertRepository implements alert.Repository using sqlx
type AlertRepository struct {
	db DBTX
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert rule
func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	query := `
		INSERT INTO alerts (
			id, user_id, alert_name, coin_id, coin_name, coin_symbol,
			alert_type, condition, threshold_value, frequency,
			created_at, is_active, last_triggered_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.AlertName, a.CoinID, a.CoinName, a.CoinSymbol,
		a.AlertType, a.Condition, a.ThresholdValue, a.Frequency,
		a.CreatedAt, a.IsActive, a.LastTriggeredAt,
	)

	return err
}

// GetByID retrieves an alert by ID
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	var a alert.Alert

	query := `SELECT * FROM alerts WHERE id = $1`

	err := r.db.GetContext(ctx, &a, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// List retrieves all alerts for a user
func (r *AlertRepository) List(ctx context.Context, userID *uuid.UUID) ([]*alert.Alert, error) {
	var alerts []*alert.Alert

	query := `
		SELECT * FROM alerts
		WHERE user_id IS NOT DISTINCT FROM $1
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &alerts, query, userID)
	if err != nil {
		return nil, err
	}

	return alerts, nil
}

// ListByCoin retrieves a user's alerts for one coin
func (r *AlertRepository) ListByCoin(ctx context.Context, userID *uuid.UUID, coinID string) ([]*alert.Alert, error) {
	var alerts []*alert.Alert

	query := `
		SELECT * FROM alerts
		WHERE user_id IS NOT DISTINCT FROM $1 AND coin_id = $2
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &alerts, query, userID, coinID)
	if err != nil {
		return nil, err
	}

	return alerts, nil
}

// ListActive retrieves all active alerts across users
func (r *AlertRepository) ListActive(ctx context.Context) ([]*alert.Alert, error) {
	var alerts []*alert.Alert

	query := `
		SELECT * FROM alerts
		WHERE is_active = true
		ORDER BY coin_id ASC, created_at ASC`

	err := r.db.SelectContext(ctx, &alerts, query)
	if err != nil {
		return nil, err
	}

	return alerts, nil
}

// Update updates an alert rule
func (r *AlertRepository) Update(ctx context.Context, a *alert.Alert) error {
	query := `
		UPDATE alerts SET
			alert_name = $2,
			coin_id = $3,
			coin_name = $4,
			coin_symbol = $5,
			alert_type = $6,
			condition = $7,
			threshold_value = $8,
			frequency = $9,
			is_active = $10,
			last_triggered_at = $11
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		a.ID, a.AlertName, a.CoinID, a.CoinName, a.CoinSymbol,
		a.AlertType, a.Condition, a.ThresholdValue, a.Frequency,
		a.IsActive, a.LastTriggeredAt,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.ErrNotFound
	}

	return nil
}

// Delete deletes an alert rule
func (r *AlertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM alerts WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.ErrNotFound
	}

	return nil
}

// MarkTriggered stamps last_triggered_at and the post-fire active state
func (r *AlertRepository) MarkTriggered(ctx context.Context, id uuid.UUID, at time.Time, stillActive bool) error {
	query := `
		UPDATE alerts SET
			last_triggered_at = $2,
			is_active = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, at, stillActive)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.ErrNotFound
	}

	return nil
}
