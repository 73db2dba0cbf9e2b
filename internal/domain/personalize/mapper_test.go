package personalize

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseAnswers() Answers {
	return Answers{
		LearningStyle:       domain.LearningStyleVisual,
		SkillLevel:          domain.SkillLevelIntermediate,
		PrimaryGoal:         domain.PrimaryGoalRetention,
		PreferredPace:       domain.PaceModerate,
		DailyTimeCommitment: 10,
	}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestMaxReviewsForSkill(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 10, MaxReviewsForSkill(domain.SkillLevelBeginner))
	assert.Equal(t, 20, MaxReviewsForSkill(domain.SkillLevelIntermediate))
	assert.Equal(t, 30, MaxReviewsForSkill(domain.SkillLevelAdvanced))
}

func TestPaceSettings(t *testing.T) {
	t.Parallel()
	tests := []struct {
		pace        domain.PreferredPace
		multiplier  float64
		maxInterval int
	}{
		{domain.PaceIntensive, 0.8, 21},
		{domain.PaceModerate, 1.0, 30},
		{domain.PaceGradual, 1.5, 60},
	}
	for _, tc := range tests {
		t.Run(string(tc.pace), func(t *testing.T) {
			m, max := PaceSettings(tc.pace)
			assert.Equal(t, tc.multiplier, m)
			assert.Equal(t, tc.maxInterval, max)
		})
	}
}

func TestDifficultyThreshold(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.8, DifficultyThreshold(nil))
	assert.InDelta(t, 0.95, DifficultyThreshold(intPtr(1)), 1e-9)
	assert.InDelta(t, 0.95, DifficultyThreshold(intPtr(2)), 1e-9)
	assert.InDelta(t, 0.90, DifficultyThreshold(intPtr(3)), 1e-9)
	assert.InDelta(t, 0.85, DifficultyThreshold(intPtr(4)), 1e-9)
	assert.InDelta(t, 0.80, DifficultyThreshold(intPtr(5)), 1e-9)
}

func TestDifficultyThresholdClamp(t *testing.T) {
	t.Parallel()
	// Answers bound tolerance to 1..5, so the 0.75 floor only applies to
	// values the validator rejects.
	for tolerance := 1; tolerance <= 5; tolerance++ {
		got := DifficultyThreshold(intPtr(tolerance))
		assert.GreaterOrEqual(t, got, 0.80)
		assert.LessOrEqual(t, got, 0.95)
	}
	assert.InDelta(t, 0.75, DifficultyThreshold(intPtr(6)), 1e-9)
	assert.InDelta(t, 0.75, DifficultyThreshold(intPtr(20)), 1e-9)
	assert.InDelta(t, 0.95, DifficultyThreshold(intPtr(0)), 1e-9)

	a := baseAnswers()
	a.DifficultyTolerance = intPtr(6)
	assert.Error(t, a.Validate())
}

func TestFromOnboarding(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2026, 2, 2, 7, 0, 0, 0, time.UTC)

	a := baseAnswers()
	a.PreferredPace = domain.PaceGradual
	a.DifficultyTolerance = intPtr(3)
	a.AreasOfInterest = []string{"People & Relationships"}

	res, err := FromOnboarding(userID, a, now)
	require.NoError(t, err)

	p := res.Profile
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, domain.LearningStyleVisual, p.LearningStyle)
	assert.Equal(t, domain.PaceGradual, p.PreferredPace)
	assert.Equal(t, 1.0, p.IntervalMultiplier)
	assert.True(t, p.OnboardingCompleted)
	assert.Equal(t, []string{"People & Relationships"}, p.AreasOfInterest)
	assert.NoError(t, p.Validate())

	c := res.Config
	assert.Equal(t, 20, c.MaxReviewsPerSession)
	assert.Equal(t, 1.5, c.IntervalMultiplier)
	assert.Equal(t, 60, c.MaxIntervalDays)
	assert.InDelta(t, 0.90, c.DifficultyThreshold, 1e-9)
	assert.False(t, c.PreferRecognition)
	assert.True(t, c.ShowContext)
	assert.True(t, c.EnableHapticFeedback)
	assert.True(t, c.AdaptiveScheduling)
	assert.NoError(t, c.Validate())

	assert.Nil(t, res.Reminder)
}

func TestFromOnboardingPreferRecognition(t *testing.T) {
	t.Parallel()
	now := time.Now()

	beginner := baseAnswers()
	beginner.SkillLevel = domain.SkillLevelBeginner
	res, err := FromOnboarding(uuid.New(), beginner, now)
	require.NoError(t, err)
	assert.True(t, res.Config.PreferRecognition, "beginners default to recognition")
	assert.Equal(t, 10, res.Config.MaxReviewsPerSession)

	beginner.PreferRecognition = boolPtr(false)
	res, err = FromOnboarding(uuid.New(), beginner, now)
	require.NoError(t, err)
	assert.False(t, res.Config.PreferRecognition, "explicit choice wins")

	advanced := baseAnswers()
	advanced.SkillLevel = domain.SkillLevelAdvanced
	res, err = FromOnboarding(uuid.New(), advanced, now)
	require.NoError(t, err)
	assert.False(t, res.Config.PreferRecognition)
}

func TestFromOnboardingReminder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		preferred string
		want      string
	}{
		{"morning", "08:00"},
		{"afternoon", "14:00"},
		{"evening", "20:00"},
		{"flexible", "08:00"},
		{"", "08:00"},
	}
	for _, tc := range tests {
		t.Run(tc.preferred, func(t *testing.T) {
			a := baseAnswers()
			a.EnableReminders = true
			a.PreferredReviewTime = tc.preferred

			res, err := FromOnboarding(uuid.New(), a, time.Now())
			require.NoError(t, err)
			require.NotNil(t, res.Reminder)
			assert.Equal(t, tc.want, res.Reminder.TriggerValue)
			assert.Equal(t, "DAILY", res.Reminder.Frequency)
			assert.Contains(t, res.Reminder.IfThenPhrase, tc.want)
		})
	}
}

func TestFromOnboardingValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Answers)
	}{
		{"unknown style", func(a *Answers) { a.LearningStyle = "AUDITORY" }},
		{"missing goal", func(a *Answers) { a.PrimaryGoal = "" }},
		{"commitment too small", func(a *Answers) { a.DailyTimeCommitment = 2 }},
		{"tolerance out of range", func(a *Answers) { a.DifficultyTolerance = intPtr(9) }},
		{"unknown review time", func(a *Answers) { a.PreferredReviewTime = "midnight" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := baseAnswers()
			tc.mutate(&a)
			_, err := FromOnboarding(uuid.New(), a, time.Now())
			assert.ErrorIs(t, err, ErrInvalidAnswers)
		})
	}

	_, err := FromOnboarding(uuid.Nil, baseAnswers(), time.Now())
	assert.ErrorIs(t, err, domain.ErrProfileUserIDEmpty)
}
