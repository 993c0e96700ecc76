package watchlist

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for watchlist data access
type Repository interface {
	Create(ctx context.Context, item *Item) error
	List(ctx context.Context, userID *uuid.UUID) ([]*Item, error)
	Exists(ctx context.Context, userID *uuid.UUID, coinID string) (bool, error)
	// Delete removes a coin from the list; deleting an absent coin is a no-op
	Delete(ctx context.Context, userID *uuid.UUID, coinID string) error
}
