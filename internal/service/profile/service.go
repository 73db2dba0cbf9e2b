// Package profile manages a user's learning profile: onboarding, preference
// edits, review configuration and periodic check-ins.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/checkin"
	"github.com/phrazzld/recall-api/internal/domain/personalize"
	"github.com/phrazzld/recall-api/internal/service"
	"github.com/phrazzld/recall-api/internal/store"
)

// Analytics windows.
const (
	AnalyticsActivityDays    = 30
	AnalyticsCheckInLimit    = 10
	AnalyticsAdaptationLimit = 30
)

// Errors returned by Service.
var (
	ErrProfileNotFound      = store.ErrProfileNotFound
	ErrReviewConfigNotFound = store.ErrReviewConfigNotFound
	// ErrAlreadyOnboarded is returned when onboarding is submitted twice.
	ErrAlreadyOnboarded = store.ErrProfileExists
	// ErrInvalidUpdate wraps validation failures of update payloads.
	ErrInvalidUpdate = fmt.Errorf("%w: update", service.ErrInvalidInput)
)

var validate = validator.New()

// OnboardingResult is what onboarding created.
type OnboardingResult struct {
	Profile  *domain.Profile           `json:"profile"`
	Config   *domain.ReviewConfig      `json:"review_config"`
	Reminder *domain.ReminderIntention `json:"reminder,omitempty"`
}

// ProfileUpdate is a partial profile edit. Nil fields are left alone.
type ProfileUpdate struct {
	LearningStyle       *domain.LearningStyle `json:"learning_style,omitempty" validate:"omitempty,oneof=VISUAL HANDS_ON THEORETICAL MIXED"`
	SkillLevel          *domain.SkillLevel    `json:"skill_level,omitempty" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	PrimaryGoal         *domain.PrimaryGoal   `json:"primary_goal,omitempty" validate:"omitempty,oneof=RETENTION LEARNING ORGANIZATION HABIT_BUILDING"`
	PreferredPace       *domain.PreferredPace `json:"preferred_pace,omitempty" validate:"omitempty,oneof=INTENSIVE MODERATE GRADUAL"`
	DailyTimeCommitment *int                  `json:"daily_time_commitment,omitempty" validate:"omitempty,min=5,max=120"`
	PreferredReviewTime *string               `json:"preferred_review_time,omitempty" validate:"omitempty,oneof=morning afternoon evening flexible"`
	AreasOfInterest     []string              `json:"areas_of_interest,omitempty" validate:"omitempty,dive,required,max=100"`
}

func (u ProfileUpdate) apply(p *domain.Profile) {
	if u.LearningStyle != nil {
		p.LearningStyle = *u.LearningStyle
	}
	if u.SkillLevel != nil {
		p.SkillLevel = *u.SkillLevel
	}
	if u.PrimaryGoal != nil {
		p.PrimaryGoal = *u.PrimaryGoal
	}
	if u.PreferredPace != nil {
		p.PreferredPace = *u.PreferredPace
	}
	if u.DailyTimeCommitment != nil {
		p.DailyTimeCommitment = *u.DailyTimeCommitment
	}
	if u.PreferredReviewTime != nil {
		p.PreferredReviewTime = *u.PreferredReviewTime
	}
	if u.AreasOfInterest != nil {
		p.AreasOfInterest = append([]string{}, u.AreasOfInterest...)
	}
}

// ReviewConfigUpdate is a partial review config edit. Nil fields are left
// alone.
type ReviewConfigUpdate struct {
	MaxReviewsPerSession *int     `json:"max_reviews_per_session,omitempty" validate:"omitempty,min=5,max=50"`
	PreferRecognition    *bool    `json:"prefer_recognition,omitempty"`
	ShowContext          *bool    `json:"show_context,omitempty"`
	EnableHapticFeedback *bool    `json:"enable_haptic_feedback,omitempty"`
	AdaptiveScheduling   *bool    `json:"adaptive_scheduling,omitempty"`
	IntervalMultiplier   *float64 `json:"interval_multiplier,omitempty" validate:"omitempty,min=0.5,max=2"`
	DifficultyThreshold  *float64 `json:"difficulty_threshold,omitempty" validate:"omitempty,min=0.5,max=1"`
	MaxIntervalDays      *int     `json:"max_interval_days,omitempty" validate:"omitempty,min=7,max=90"`
}

func (u ReviewConfigUpdate) apply(c *domain.ReviewConfig) {
	setIf(&c.MaxReviewsPerSession, u.MaxReviewsPerSession)
	setIf(&c.PreferRecognition, u.PreferRecognition)
	setIf(&c.ShowContext, u.ShowContext)
	setIf(&c.EnableHapticFeedback, u.EnableHapticFeedback)
	setIf(&c.AdaptiveScheduling, u.AdaptiveScheduling)
	setIf(&c.IntervalMultiplier, u.IntervalMultiplier)
	setIf(&c.DifficultyThreshold, u.DifficultyThreshold)
	setIf(&c.MaxIntervalDays, u.MaxIntervalDays)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// CheckInSubmission is a completed check-in questionnaire.
type CheckInSubmission struct {
	Type          domain.CheckInType `json:"check_in_type" validate:"required,oneof=WEEKLY MONTHLY TRIGGERED"`
	TriggerReason string             `json:"trigger_reason,omitempty" validate:"omitempty,max=64"`
	// Responses holds every answer as a JSON object. The pace and support
	// answers (wantsSlowerPace, wantsFasterPace, needsMoreSupport) change
	// the profile; the rest are only recorded.
	Responses json.RawMessage `json:"responses" validate:"required"`
}

// CheckInResult is the outcome of SubmitCheckIn.
type CheckInResult struct {
	Profile *domain.Profile       `json:"profile"`
	Record  *domain.CheckInRecord `json:"record"`
}

// AdaptationHistory summarises how the retuner has moved the user.
type AdaptationHistory struct {
	CurrentMultiplier float64                    `json:"current_multiplier"`
	ConfigMultiplier  float64                    `json:"config_multiplier"`
	CurrentRecallRate float64                    `json:"current_recall_rate"`
	LastUpdate        *time.Time                 `json:"last_update,omitempty"`
	Records           []*domain.AdaptationRecord `json:"records"`
}

// Analytics is the profile dashboard.
type Analytics struct {
	Profile           *domain.Profile             `json:"profile"`
	Config            *domain.ReviewConfig        `json:"review_config,omitempty"`
	RecentActivity    []*domain.DailyActivity     `json:"recent_activity"`
	RecentCheckIns    []*domain.CheckInRecord     `json:"recent_check_ins"`
	AdaptationHistory AdaptationHistory           `json:"adaptation_history"`
	CheckInStatus     checkin.Status              `json:"check_in_status"`
	Reminders         []*domain.ReminderIntention `json:"reminders"`
}

// Service is the profile use-case surface.
type Service interface {
	// Onboard builds and stores the profile, config and optional reminder
	// in one transaction. Returns ErrAlreadyOnboarded for a second call.
	Onboard(ctx context.Context, userID uuid.UUID, answers personalize.Answers) (*OnboardingResult, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.Profile, error)

	GetReviewConfig(ctx context.Context, userID uuid.UUID) (*domain.ReviewConfig, error)
	UpdateReviewConfig(ctx context.Context, userID uuid.UUID, update ReviewConfigUpdate) (*domain.ReviewConfig, error)

	// GetCheckInStatus reports whether a check-in is due. Users without a
	// completed profile never need one.
	GetCheckInStatus(ctx context.Context, userID uuid.UUID) (checkin.Status, error)

	// SubmitCheckIn applies the answers, bumps the check-in counters and
	// appends a CheckInRecord in one transaction.
	SubmitCheckIn(ctx context.Context, userID uuid.UUID, submission CheckInSubmission) (*CheckInResult, error)

	GetAnalytics(ctx context.Context, userID uuid.UUID) (*Analytics, error)
}

func newError(op, message string, err error) *service.ServiceError {
	return service.NewServiceError("profile", op, message, err)
}
