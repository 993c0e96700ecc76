package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for alert data access
type Repository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	List(ctx context.Context, userID *uuid.UUID) ([]*Alert, error)
	ListByCoin(ctx context.Context, userID *uuid.UUID, coinID string) ([]*Alert, error)
	// ListActive returns every active alert across all users (evaluator sweep)
	ListActive(ctx context.Context) ([]*Alert, error)
	Update(ctx context.Context, a *Alert) error
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkTriggered stamps last_triggered_at and the post-fire active state
	MarkTriggered(ctx context.Context, id uuid.UUID, at time.Time, stillActive bool) error
}
