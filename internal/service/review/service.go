// Package review selects the items a user should review next and records
// review outcomes against their schedule.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service"
	"github.com/phrazzld/recall-api/internal/store"
)

// Due-set limits.
const (
	// DefaultLimit applies when the caller gives no limit and the user has
	// no review config.
	DefaultLimit = 20
	// MaxLimit caps any requested limit. Larger requests are clamped.
	MaxLimit = 100
)

// Errors returned by Service.
var (
	// ErrItemNotFound indicates the reviewed item does not exist.
	ErrItemNotFound = store.ErrItemNotFound

	// ErrItemNotOwned indicates the item belongs to another user.
	ErrItemNotOwned = fmt.Errorf("%w: item", service.ErrNotOwned)

	// ErrInvalidRating indicates a rating outside AGAIN, HARD, GOOD, EASY.
	ErrInvalidRating = domain.ErrInvalidRating

	// ErrInvalidLimit indicates a negative due-set limit.
	ErrInvalidLimit = fmt.Errorf("%w: limit must not be negative", service.ErrInvalidInput)
)

// SubmitResult is the outcome of one review.
type SubmitResult struct {
	Item         *domain.Item `json:"item"`
	IntervalDays int          `json:"interval_days"`
	NextReviewAt time.Time    `json:"next_review_at"`
	// Personalized is false when the user had no profile or config and the
	// raw SM-2 interval was used.
	Personalized bool `json:"personalized"`
}

// StatsReport is a user's aggregate review history.
type StatsReport struct {
	TotalCompleted int `json:"total_reviews_completed"`
	TotalAgain     int `json:"total_reviews_again"`
	TotalHard      int `json:"total_reviews_hard"`
	TotalGood      int `json:"total_reviews_good"`
	TotalEasy      int `json:"total_reviews_easy"`
	// RecallSuccessRate is the whole-number percentage of GOOD and EASY
	// reviews.
	RecallSuccessRate int `json:"recall_success_rate"`
	DueCount          int `json:"due_count"`
}

// Service is the review use-case surface.
type Service interface {
	// GetDueItems returns up to limit items due for the user, ordered for
	// their learning style and goal. A limit of 0 uses the user's session
	// size, or DefaultLimit without a config.
	GetDueItems(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Item, error)

	// GetDueCount counts every due candidate, without ranking or limit.
	GetDueCount(ctx context.Context, userID uuid.UUID) (int, error)

	// SubmitReview applies rating to the item and reschedules it. The item
	// read, schedule write, stats increment and engagement record happen in
	// one transaction.
	//
	// Returns ErrInvalidRating before touching storage, ErrItemNotFound
	// when the item is gone and ErrItemNotOwned when it belongs to someone
	// else.
	SubmitReview(ctx context.Context, userID, itemID uuid.UUID, rating domain.ReviewRating) (*SubmitResult, error)

	// GetStats returns the user's review counters. A user who never
	// reviewed gets a zero report.
	GetStats(ctx context.Context, userID uuid.UUID) (*StatsReport, error)
}

func newError(op, message string, err error) *service.ServiceError {
	return service.NewServiceError("review", op, message, err)
}
