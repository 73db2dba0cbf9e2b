package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CheckInType distinguishes scheduled check-ins from triggered ones.
type CheckInType string

// Possible check-in types
const (
	CheckInWeekly    CheckInType = "WEEKLY"
	CheckInMonthly   CheckInType = "MONTHLY"
	CheckInTriggered CheckInType = "TRIGGERED"
)

// Check-in reasons reported with a check-in status.
const (
	ReasonScheduledWeekly  = "scheduled_weekly"
	ReasonScheduledMonthly = "scheduled_monthly"
	ReasonLowEngagement    = "low_engagement"
	ReasonLowRecallRate    = "low_recall_rate"
)

// Valid reports whether t is a known check-in type.
func (t CheckInType) Valid() bool {
	switch t {
	case CheckInWeekly, CheckInMonthly, CheckInTriggered:
		return true
	}
	return false
}

// CheckInRecord is an append-only audit entry for a processed check-in.
type CheckInRecord struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Type          CheckInType     `json:"check_in_type"`
	TriggerReason string          `json:"trigger_reason,omitempty"`
	Answers       json.RawMessage `json:"answers"`
	Before        ProfileSnapshot `json:"profile_before"`
	After         ProfileSnapshot `json:"profile_after"`
	CreatedAt     time.Time       `json:"created_at"`
}
