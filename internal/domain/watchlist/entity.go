package watchlist

import (
	"time"

	"github.com/google/uuid"
)

// Item is a single tracked coin in a user's watchlist.
// UserID is nil for the shared anonymous list.
type Item struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"userId,omitempty"`
	CoinID    string     `db:"coin_id" json:"coinId"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}
