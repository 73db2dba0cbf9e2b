package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// LearningStyle describes how the user prefers to absorb material.
type LearningStyle string

// Possible learning styles
const (
	LearningStyleVisual      LearningStyle = "VISUAL"
	LearningStyleHandsOn     LearningStyle = "HANDS_ON"
	LearningStyleTheoretical LearningStyle = "THEORETICAL"
	LearningStyleMixed       LearningStyle = "MIXED"
)

// SkillLevel is the user's experience with memory techniques.
type SkillLevel string

// Possible skill levels
const (
	SkillLevelBeginner     SkillLevel = "BEGINNER"
	SkillLevelIntermediate SkillLevel = "INTERMEDIATE"
	SkillLevelAdvanced     SkillLevel = "ADVANCED"
)

// PrimaryGoal is what the user mainly wants out of reviewing.
type PrimaryGoal string

// Possible primary goals
const (
	PrimaryGoalRetention     PrimaryGoal = "RETENTION"
	PrimaryGoalLearning      PrimaryGoal = "LEARNING"
	PrimaryGoalOrganization  PrimaryGoal = "ORGANIZATION"
	PrimaryGoalHabitBuilding PrimaryGoal = "HABIT_BUILDING"
)

// PreferredPace is how aggressively the user wants items to come back.
type PreferredPace string

// Possible paces
const (
	PaceIntensive PreferredPace = "INTENSIVE"
	PaceModerate  PreferredPace = "MODERATE"
	PaceGradual   PreferredPace = "GRADUAL"
)

// Adaptive multiplier bounds. The retuner never leaves this range.
const (
	NeutralIntervalMultiplier = 1.0
	MinAdaptiveMultiplier     = 0.5
	MaxAdaptiveMultiplier     = 2.0
)

// Profile validation errors
var (
	ErrProfileUserIDEmpty = errors.New("profile user ID cannot be empty")
	ErrInvalidMultiplier  = errors.New("interval multiplier out of range")
	ErrInvalidRecallRate  = errors.New("average recall rate must be between 0 and 1")
)

// Profile is the per-user learning profile built at onboarding and refined
// by check-ins and the daily retuner.
type Profile struct {
	UserID              uuid.UUID     `json:"user_id"`
	LearningStyle       LearningStyle `json:"learning_style"`
	SkillLevel          SkillLevel    `json:"skill_level"`
	PrimaryGoal         PrimaryGoal   `json:"primary_goal"`
	PreferredPace       PreferredPace `json:"preferred_pace"`
	DailyTimeCommitment int           `json:"daily_time_commitment"`
	PreferredReviewTime string        `json:"preferred_review_time,omitempty"`
	AreasOfInterest     []string      `json:"areas_of_interest"`

	// IntervalMultiplier is learned by the daily retuner and composed with
	// ReviewConfig.IntervalMultiplier at review time. It is stored as
	// optimal_review_interval but is a multiplier, not a number of days.
	IntervalMultiplier float64 `json:"optimal_review_interval"`

	AverageRecallRate     float64    `json:"average_recall_rate"`
	ConsecutiveMissedDays int        `json:"consecutive_missed_days"`
	LastCheckInDate       *time.Time `json:"last_check_in_date,omitempty"`
	TotalCheckIns         int        `json:"total_check_ins"`
	LastAdaptationAt      *time.Time `json:"last_adaptation_at,omitempty"`
	OnboardingCompleted   bool       `json:"onboarding_completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the Profile has valid data.
func (p *Profile) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrProfileUserIDEmpty
	}

	if !p.LearningStyle.Valid() || !p.SkillLevel.Valid() ||
		!p.PrimaryGoal.Valid() || !p.PreferredPace.Valid() {
		return ErrInvalidEnum
	}

	if p.IntervalMultiplier < MinAdaptiveMultiplier || p.IntervalMultiplier > MaxAdaptiveMultiplier {
		return ErrInvalidMultiplier
	}

	if p.AverageRecallRate < 0 || p.AverageRecallRate > 1 {
		return ErrInvalidRecallRate
	}

	return nil
}

// Snapshot captures the user-editable preference fields. Check-in records
// store one before and one after applying answers.
func (p *Profile) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{
		LearningStyle:       p.LearningStyle,
		SkillLevel:          p.SkillLevel,
		PrimaryGoal:         p.PrimaryGoal,
		PreferredPace:       p.PreferredPace,
		DailyTimeCommitment: p.DailyTimeCommitment,
	}
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	c := *p
	c.AreasOfInterest = append([]string(nil), p.AreasOfInterest...)
	if p.LastCheckInDate != nil {
		t := *p.LastCheckInDate
		c.LastCheckInDate = &t
	}
	if p.LastAdaptationAt != nil {
		t := *p.LastAdaptationAt
		c.LastAdaptationAt = &t
	}
	return &c
}

// ProfileSnapshot is the mutable subset of a Profile.
type ProfileSnapshot struct {
	LearningStyle       LearningStyle `json:"learning_style"`
	SkillLevel          SkillLevel    `json:"skill_level"`
	PrimaryGoal         PrimaryGoal   `json:"primary_goal"`
	PreferredPace       PreferredPace `json:"preferred_pace"`
	DailyTimeCommitment int           `json:"daily_time_commitment"`
}

// Valid reports whether s is a known learning style.
func (s LearningStyle) Valid() bool {
	switch s {
	case LearningStyleVisual, LearningStyleHandsOn, LearningStyleTheoretical, LearningStyleMixed:
		return true
	}
	return false
}

// Valid reports whether l is a known skill level.
func (l SkillLevel) Valid() bool {
	switch l {
	case SkillLevelBeginner, SkillLevelIntermediate, SkillLevelAdvanced:
		return true
	}
	return false
}

// Valid reports whether g is a known goal.
func (g PrimaryGoal) Valid() bool {
	switch g {
	case PrimaryGoalRetention, PrimaryGoalLearning, PrimaryGoalOrganization, PrimaryGoalHabitBuilding:
		return true
	}
	return false
}

// Valid reports whether p is a known pace.
func (p PreferredPace) Valid() bool {
	switch p {
	case PaceIntensive, PaceModerate, PaceGradual:
		return true
	}
	return false
}
