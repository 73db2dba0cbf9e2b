package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewConfig validation errors
var (
	ErrConfigUserIDEmpty          = errors.New("review config user ID cannot be empty")
	ErrInvalidMaxReviews          = errors.New("max reviews per session must be positive")
	ErrInvalidMaxInterval         = errors.New("max interval must be at least 1 day")
	ErrInvalidDifficultyThreshold = errors.New("difficulty threshold must be between 0.5 and 1.0")
)

// ReviewConfig holds the per-user session and pacing settings.
//
// IntervalMultiplier here is the pace-derived multiplier chosen at onboarding
// (or edited by the user). It is deliberately separate from
// Profile.IntervalMultiplier, which only the daily retuner changes.
type ReviewConfig struct {
	UserID               uuid.UUID `json:"user_id"`
	MaxReviewsPerSession int       `json:"max_reviews_per_session"`
	PreferRecognition    bool      `json:"prefer_recognition"`
	ShowContext          bool      `json:"show_context"`
	EnableHapticFeedback bool      `json:"enable_haptic_feedback"`
	AdaptiveScheduling   bool      `json:"adaptive_scheduling"`
	IntervalMultiplier   float64   `json:"interval_multiplier"`
	MaxIntervalDays      int       `json:"max_interval_days"`
	DifficultyThreshold  float64   `json:"difficulty_threshold"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Validate checks if the ReviewConfig has valid data.
func (c *ReviewConfig) Validate() error {
	if c.UserID == uuid.Nil {
		return ErrConfigUserIDEmpty
	}

	if c.MaxReviewsPerSession <= 0 {
		return ErrInvalidMaxReviews
	}

	if c.IntervalMultiplier <= 0 {
		return ErrInvalidMultiplier
	}

	if c.MaxIntervalDays < MinIntervalDays {
		return ErrInvalidMaxInterval
	}

	if c.DifficultyThreshold < 0.5 || c.DifficultyThreshold > 1.0 {
		return ErrInvalidDifficultyThreshold
	}

	return nil
}

// Clone returns a copy of the config.
func (c *ReviewConfig) Clone() *ReviewConfig {
	cp := *c
	return &cp
}
