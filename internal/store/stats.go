package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// StatsStore persists aggregate review counters.
type StatsStore interface {
	// Get returns ErrStatsNotFound if the user has never reviewed.
	Get(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error)
	// Increment atomically adds one review with the given rating, creating
	// the row on first use.
	Increment(ctx context.Context, userID uuid.UUID, rating domain.ReviewRating, at time.Time) error
}

// ActivityStore records per-day engagement.
type ActivityStore interface {
	// RecordEngagement notes that the user reviewed the item on at's UTC
	// day. The day's activity counter only moves the first time a given
	// item is seen that day; recorded reports whether that happened.
	RecordEngagement(ctx context.Context, userID, itemID uuid.UUID, at time.Time) (recorded bool, err error)
	// LastActiveDay returns the most recent day with activity, or nil.
	LastActiveDay(ctx context.Context, userID uuid.UUID) (*time.Time, error)
	// ListSince returns daily activity on or after since, newest first.
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*domain.DailyActivity, error)
}

// AdaptationStore persists the retuner's audit trail.
type AdaptationStore interface {
	Create(ctx context.Context, r *domain.AdaptationRecord) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AdaptationRecord, error)
}

// CheckInStore persists processed check-ins.
type CheckInStore interface {
	Create(ctx context.Context, r *domain.CheckInRecord) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CheckInRecord, error)
}
