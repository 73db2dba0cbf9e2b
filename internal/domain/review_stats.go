package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ReviewStats aggregates a user's review outcomes across all items.
type ReviewStats struct {
	UserID         uuid.UUID `json:"user_id"`
	TotalCompleted int       `json:"total_reviews_completed"`
	TotalAgain     int       `json:"total_reviews_again"`
	TotalHard      int       `json:"total_reviews_hard"`
	TotalGood      int       `json:"total_reviews_good"`
	TotalEasy      int       `json:"total_reviews_easy"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Record adds one review with the given rating to the counters.
func (s *ReviewStats) Record(rating ReviewRating) {
	s.TotalCompleted++
	switch rating {
	case RatingAgain:
		s.TotalAgain++
	case RatingHard:
		s.TotalHard++
	case RatingGood:
		s.TotalGood++
	case RatingEasy:
		s.TotalEasy++
	}
}

// AdaptiveRecallRate is the recall rate the retuner adapts on. HARD counts as
// a successful recall here.
func (s *ReviewStats) AdaptiveRecallRate() float64 {
	if s.TotalCompleted <= 0 {
		return 0
	}
	return float64(s.TotalGood+s.TotalEasy+s.TotalHard) / float64(s.TotalCompleted)
}

// ReportedRecallRate is the recall rate shown to users. Only GOOD and EASY
// count as successful recalls.
func (s *ReviewStats) ReportedRecallRate() float64 {
	if s.TotalCompleted <= 0 {
		return 0
	}
	return float64(s.TotalGood+s.TotalEasy) / float64(s.TotalCompleted)
}

// RecallSuccessPercent is ReportedRecallRate as a rounded whole percentage.
func (s *ReviewStats) RecallSuccessPercent() int {
	return int(math.Round(s.ReportedRecallRate() * 100))
}
