package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"coinwatch/internal/domain/watchlist"
	"coinwatch/pkg/errors"
)

// Compile-time check
var _ watchlist.Repository = (*WatchlistRepository)(nil)

// WatchlistRepository implements watchlist.Repository using sqlx
type WatchlistRepository struct {
	db DBTX
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db DBTX) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Create inserts a new watchlist row
func (r *WatchlistRepository) Create(ctx context.Context, item *watchlist.Item) error {
	query := `
		INSERT INTO watchlist (id, user_id, coin_id, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.UserID, item.CoinID, item.CreatedAt,
	)
	if isUniqueViolation(err) {
		// Concurrent adds of the same coin race past the service-level
		// existence check; the unique index decides the loser
		return errors.Wrapf(errors.ErrAlreadyExists, "coin %s", item.CoinID)
	}

	return err
}

// List retrieves all rows for a user (NULL user_id is the anonymous list)
func (r *WatchlistRepository) List(ctx context.Context, userID *uuid.UUID) ([]*watchlist.Item, error) {
	var items []*watchlist.Item

	query := `
		SELECT * FROM watchlist
		WHERE user_id IS NOT DISTINCT FROM $1
		ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &items, query, userID)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Exists checks whether a coin is already tracked
func (r *WatchlistRepository) Exists(ctx context.Context, userID *uuid.UUID, coinID string) (bool, error) {
	var exists bool

	query := `
		SELECT EXISTS(
			SELECT 1 FROM watchlist
			WHERE user_id IS NOT DISTINCT FROM $1 AND coin_id = $2
		)`

	err := r.db.GetContext(ctx, &exists, query, userID, coinID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Delete removes a coin from a user's list. Absent rows are a no-op.
func (r *WatchlistRepository) Delete(ctx context.Context, userID *uuid.UUID, coinID string) error {
	query := `
		DELETE FROM watchlist
		WHERE user_id IS NOT DISTINCT FROM $1 AND coin_id = $2`

	_, err := r.db.ExecContext(ctx, query, userID, coinID)
	return err
}

// GetByCoinID retrieves a single row by coin identifier
func (r *WatchlistRepository) GetByCoinID(ctx context.Context, userID *uuid.UUID, coinID string) (*watchlist.Item, error) {
	var item watchlist.Item

	query := `
		SELECT * FROM watchlist
		WHERE user_id IS NOT DISTINCT FROM $1 AND coin_id = $2`

	err := r.db.GetContext(ctx, &item, query, userID, coinID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}
