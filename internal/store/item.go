package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// ItemStore persists reviewable items and their schedule state.
type ItemStore interface {
	// Create saves a new item. Items normally arrive from the ingestion
	// side; this exists for seeding and tests.
	Create(ctx context.Context, item *domain.Item) error

	// GetByID returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)

	// GetForUpdate is GetByID with a row lock held until the surrounding
	// transaction ends. Concurrent reviews of one item serialize here.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error)

	// UpdateSchedule writes the schedule fields of item (last/next review,
	// interval, ease, counters). Returns ErrItemNotFound if it is gone.
	UpdateSchedule(ctx context.Context, item *domain.Item) error

	// ListDueCandidates returns active due items for the user ordered by
	// next review time ascending (nulls last) then creation time.
	ListDueCandidates(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.Item, error)

	// CountDue counts the same candidates ListDueCandidates would return.
	CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
}
