package watchlist

import (
	"context"
	"time"

	"github.com/google/uuid"

	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

// Service coordinates watchlist operations
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService constructs a watchlist service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Get().With("component", "watchlist_service"),
	}
}

// List returns all items in a user's watchlist (never nil)
func (s *Service) List(ctx context.Context, userID *uuid.UUID) ([]*Item, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list watchlist")
	}
	if items == nil {
		items = []*Item{}
	}
	return items, nil
}

// Add tracks a coin in the watchlist. Duplicate coin identifiers are
// rejected inside the add operation so the list stays unique per user.
func (s *Service) Add(ctx context.Context, userID *uuid.UUID, coinID string) (*Item, error) {
	if coinID == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "coinId is required")
	}

	exists, err := s.repo.Exists(ctx, userID, coinID)
	if err != nil {
		return nil, errors.Wrap(err, "check watchlist entry")
	}
	if exists {
		return nil, errors.Wrapf(errors.ErrAlreadyExists, "coin %s already in watchlist", coinID)
	}

	item := &Item{
		ID:        uuid.New(),
		UserID:    userID,
		CoinID:    coinID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, errors.Wrap(err, "create watchlist entry")
	}

	s.log.Infow("Coin added to watchlist", "coin_id", coinID)

	return item, nil
}

// Remove untracks a coin. Removing a coin that is not present is a
// no-op, not an error.
func (s *Service) Remove(ctx context.Context, userID *uuid.UUID, coinID string) error {
	if coinID == "" {
		return errors.Wrap(errors.ErrInvalidInput, "coinId is required")
	}

	if err := s.repo.Delete(ctx, userID, coinID); err != nil {
		return errors.Wrap(err, "delete watchlist entry")
	}

	s.log.Infow("Coin removed from watchlist", "coin_id", coinID)

	return nil
}

// CoinIDs returns the coin identifiers in a user's watchlist
func (s *Service) CoinIDs(ctx context.Context, userID *uuid.UUID) ([]string, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.CoinID)
	}
	return ids, nil
}
