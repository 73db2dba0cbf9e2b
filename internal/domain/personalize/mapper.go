// Package personalize turns onboarding answers into a user's initial
// Profile and ReviewConfig. Every default lives in the lookup tables below.
package personalize

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// ErrInvalidAnswers is returned when onboarding answers fail validation.
var ErrInvalidAnswers = errors.New("invalid onboarding answers")

var validate = validator.New()

// Answers are the user's responses to the onboarding questionnaire.
// Pointer fields are optional; nil means the user did not choose.
type Answers struct {
	LearningStyle        domain.LearningStyle `json:"learning_style" validate:"required,oneof=VISUAL HANDS_ON THEORETICAL MIXED"`
	SkillLevel           domain.SkillLevel    `json:"skill_level" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	PrimaryGoal          domain.PrimaryGoal   `json:"primary_goal" validate:"required,oneof=RETENTION LEARNING ORGANIZATION HABIT_BUILDING"`
	PreferredPace        domain.PreferredPace `json:"preferred_pace" validate:"required,oneof=INTENSIVE MODERATE GRADUAL"`
	DailyTimeCommitment  int                  `json:"daily_time_commitment" validate:"required,min=5,max=120"`
	PreferredReviewTime  string               `json:"preferred_review_time,omitempty" validate:"omitempty,oneof=morning afternoon evening flexible"`
	AreasOfInterest      []string             `json:"areas_of_interest,omitempty" validate:"omitempty,dive,required,max=100"`
	EnableReminders      bool                 `json:"enable_reminders,omitempty"`
	PreferRecognition    *bool                `json:"prefer_recognition,omitempty"`
	DifficultyTolerance  *int                 `json:"difficulty_tolerance,omitempty" validate:"omitempty,min=1,max=5"`
	ShowContext          *bool                `json:"show_context,omitempty"`
	EnableHapticFeedback *bool                `json:"enable_haptic_feedback,omitempty"`
}

// Validate checks the answers against their struct tags.
func (a Answers) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnswers, err)
	}
	return nil
}

// Result is everything created from a completed onboarding.
type Result struct {
	Profile  *domain.Profile
	Config   *domain.ReviewConfig
	Reminder *domain.ReminderIntention // nil unless reminders were requested
}

var maxReviewsBySkill = map[domain.SkillLevel]int{
	domain.SkillLevelBeginner:     10,
	domain.SkillLevelIntermediate: 20,
	domain.SkillLevelAdvanced:     30,
}

type paceSettings struct {
	intervalMultiplier float64
	maxIntervalDays    int
}

var settingsByPace = map[domain.PreferredPace]paceSettings{
	domain.PaceIntensive: {intervalMultiplier: 0.8, maxIntervalDays: 21},
	domain.PaceModerate:  {intervalMultiplier: 1.0, maxIntervalDays: 30},
	domain.PaceGradual:   {intervalMultiplier: 1.5, maxIntervalDays: 60},
}

var reminderTimeByPreference = map[string]string{
	"morning":   "08:00",
	"afternoon": "14:00",
	"evening":   "20:00",
}

const (
	defaultDifficultyThreshold = 0.8
	minDifficultyThreshold     = 0.75
	maxDifficultyThreshold     = 0.95
	defaultReminderTime        = "08:00"
)

// MaxReviewsForSkill returns the session size for a skill level.
func MaxReviewsForSkill(level domain.SkillLevel) int {
	return maxReviewsBySkill[level]
}

// PaceSettings returns the config interval multiplier and max interval for a pace.
func PaceSettings(pace domain.PreferredPace) (float64, int) {
	s := settingsByPace[pace]
	return s.intervalMultiplier, s.maxIntervalDays
}

// DifficultyThreshold maps a 1-5 tolerance to the recall rate below which
// the retuner shortens intervals. A nil tolerance yields the default 0.8.
func DifficultyThreshold(tolerance *int) float64 {
	if tolerance == nil {
		return defaultDifficultyThreshold
	}
	threshold := 1.0 - float64(*tolerance-1)*0.05
	if threshold < minDifficultyThreshold {
		return minDifficultyThreshold
	}
	if threshold > maxDifficultyThreshold {
		return maxDifficultyThreshold
	}
	return threshold
}

// FromOnboarding validates the answers and builds the user's initial
// profile, review config and optional reminder.
func FromOnboarding(userID uuid.UUID, a Answers, now time.Time) (*Result, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrProfileUserIDEmpty
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	now = now.UTC()
	multiplier, maxInterval := PaceSettings(a.PreferredPace)

	profile := &domain.Profile{
		UserID:              userID,
		LearningStyle:       a.LearningStyle,
		SkillLevel:          a.SkillLevel,
		PrimaryGoal:         a.PrimaryGoal,
		PreferredPace:       a.PreferredPace,
		DailyTimeCommitment: a.DailyTimeCommitment,
		PreferredReviewTime: a.PreferredReviewTime,
		AreasOfInterest:     append([]string{}, a.AreasOfInterest...),
		IntervalMultiplier:  domain.NeutralIntervalMultiplier,
		OnboardingCompleted: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	config := &domain.ReviewConfig{
		UserID:               userID,
		MaxReviewsPerSession: MaxReviewsForSkill(a.SkillLevel),
		PreferRecognition:    boolOr(a.PreferRecognition, a.SkillLevel == domain.SkillLevelBeginner),
		ShowContext:          boolOr(a.ShowContext, true),
		EnableHapticFeedback: boolOr(a.EnableHapticFeedback, true),
		AdaptiveScheduling:   true,
		IntervalMultiplier:   multiplier,
		MaxIntervalDays:      maxInterval,
		DifficultyThreshold:  DifficultyThreshold(a.DifficultyTolerance),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	result := &Result{Profile: profile, Config: config}
	if a.EnableReminders {
		result.Reminder = defaultReminder(userID, a.PreferredReviewTime, now)
	}

	return result, nil
}

func defaultReminder(userID uuid.UUID, preferredTime string, now time.Time) *domain.ReminderIntention {
	at, ok := reminderTimeByPreference[preferredTime]
	if !ok {
		at = defaultReminderTime
	}

	return &domain.ReminderIntention{
		ID:           uuid.New(),
		UserID:       userID,
		TriggerType:  "TIME",
		TriggerValue: at,
		Action:       "Review today's memories",
		IfThenPhrase: fmt.Sprintf("If it's %s, then I'll review today's memories", at),
		Frequency:    "DAILY",
		Enabled:      true,
		CreatedAt:    now,
	}
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
