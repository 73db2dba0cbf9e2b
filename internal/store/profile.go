package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// ProfileStore persists learning profiles.
type ProfileStore interface {
	// Create returns ErrProfileExists when the user already has a profile.
	Create(ctx context.Context, p *domain.Profile) error
	// Get returns ErrProfileNotFound if the user has no profile.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	// GetForUpdate locks the profile row for the surrounding transaction.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	Update(ctx context.Context, p *domain.Profile) error
	// ListOnboardedUserIDs returns every user who completed onboarding.
	ListOnboardedUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// ReviewConfigStore persists per-user review configuration.
type ReviewConfigStore interface {
	Create(ctx context.Context, c *domain.ReviewConfig) error
	// Get returns ErrReviewConfigNotFound if the user has no config.
	Get(ctx context.Context, userID uuid.UUID) (*domain.ReviewConfig, error)
	Update(ctx context.Context, c *domain.ReviewConfig) error
}

// ReminderStore persists reminder intentions.
type ReminderStore interface {
	Create(ctx context.Context, r *domain.ReminderIntention) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReminderIntention, error)
}
