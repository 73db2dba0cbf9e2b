package domain

import (
	"time"

	"github.com/google/uuid"
)

// DailyActivity summarises one user's reviewing on one UTC day.
// ReviewsCompleted counts distinct items, not rating events.
type DailyActivity struct {
	UserID           uuid.UUID `json:"user_id"`
	Day              time.Time `json:"day"`
	ReviewsCompleted int       `json:"reviews_completed"`
}

// AdaptationRecord is an append-only entry written each time the daily
// retuner evaluates a user with enough signal.
type AdaptationRecord struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	RecallRate       float64   `json:"recall_rate"`
	TotalReviews     int       `json:"total_reviews"`
	MultiplierBefore float64   `json:"multiplier_before"`
	MultiplierAfter  float64   `json:"multiplier_after"`
	CreatedAt        time.Time `json:"created_at"`
}

// ReminderIntention is an implementation-intention style reminder trigger
// ("if it's 08:00, then I'll review"). Delivery is handled elsewhere.
type ReminderIntention struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	TriggerType  string    `json:"trigger_type"`
	TriggerValue string    `json:"trigger_value"`
	Action       string    `json:"action"`
	IfThenPhrase string    `json:"if_then_phrase"`
	Frequency    string    `json:"frequency"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
}

// Day truncates t to the start of its UTC day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
