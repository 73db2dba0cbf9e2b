package adapt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onboarded(multiplier float64) *domain.Profile {
	return &domain.Profile{
		UserID:              uuid.New(),
		IntervalMultiplier:  multiplier,
		OnboardingCompleted: true,
	}
}

func config(threshold float64) *domain.ReviewConfig {
	return &domain.ReviewConfig{DifficultyThreshold: threshold, AdaptiveScheduling: true}
}

// statsWith builds stats with the given total where success reviews are
// split across GOOD and HARD and the rest are AGAIN.
func statsWith(total, successes int) *domain.ReviewStats {
	return &domain.ReviewStats{
		TotalCompleted: total,
		TotalGood:      successes - successes/2,
		TotalHard:      successes / 2,
		TotalAgain:     total - successes,
	}
}

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		stats      *domain.ReviewStats
		multiplier float64
		threshold  float64
		wantAfter  float64
		wantDir    Direction
		wantSkip   SkipReason
	}{
		{"too few reviews", statsWith(9, 1), 1.0, 0.8, 1.0, Unchanged, SkipInsufficientReviews},
		{"high recall lengthens", statsWith(25, 24), 1.0, 0.8, 1.1, Lengthened, SkipNone},
		{"high recall needs 20 reviews", statsWith(15, 15), 1.0, 0.8, 1.0, Unchanged, SkipNone},
		{"low recall shortens", statsWith(10, 5), 1.0, 0.8, 0.9, Shortened, SkipNone},
		{"exactly threshold unchanged", statsWith(10, 8), 1.0, 0.8, 1.0, Unchanged, SkipNone},
		{"exactly 0.9 unchanged", statsWith(20, 18), 1.0, 0.8, 1.0, Unchanged, SkipNone},
		{"cap at 2.0", statsWith(30, 30), 2.0, 0.8, 2.0, Unchanged, SkipNone},
		{"floor at 0.5", statsWith(30, 0), 0.5, 0.8, 0.5, Unchanged, SkipNone},
		{"approaches floor", statsWith(30, 0), 0.6, 0.8, 0.5, Shortened, SkipNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(tc.stats, onboarded(tc.multiplier), config(tc.threshold))
			assert.Equal(t, tc.wantSkip, d.Skip)
			assert.InDelta(t, tc.wantAfter, d.MultiplierAfter, 1e-9)
			assert.Equal(t, tc.wantDir, d.Direction)
			assert.Equal(t, tc.multiplier, d.MultiplierBefore)
		})
	}
}

func TestDecideHardCountsAsRecall(t *testing.T) {
	t.Parallel()
	// 25 reviews, all HARD: adaptive rate 1.0 even though reported rate is 0.
	stats := &domain.ReviewStats{TotalCompleted: 25, TotalHard: 25}
	d := Decide(stats, onboarded(1.0), config(0.8))
	assert.Equal(t, 1.0, d.RecallRate)
	assert.InDelta(t, 1.1, d.MultiplierAfter, 1e-9)
	assert.Equal(t, 0.0, stats.ReportedRecallRate())
}

func TestDecideScenarioRepeatedRunsCapped(t *testing.T) {
	t.Parallel()
	stats := &domain.ReviewStats{TotalCompleted: 40, TotalGood: 30, TotalEasy: 8, TotalAgain: 2}
	require.InDelta(t, 0.95, stats.AdaptiveRecallRate(), 1e-9)

	profile := onboarded(1.0)
	first := Decide(stats, profile, config(0.8))
	assert.InDelta(t, 1.1, first.MultiplierAfter, 1e-9)

	for i := 0; i < 30; i++ {
		d := Decide(stats, profile, config(0.8))
		profile.IntervalMultiplier = d.MultiplierAfter
		assert.LessOrEqual(t, profile.IntervalMultiplier, domain.MaxAdaptiveMultiplier)
	}
	assert.Equal(t, 2.0, profile.IntervalMultiplier)
}

func TestDecideTwentyFiveReviews(t *testing.T) {
	t.Parallel()
	// 0.96 is the closest a 25-review history gets to 0.95 from above.
	stats := &domain.ReviewStats{TotalCompleted: 25, TotalGood: 20, TotalEasy: 4, TotalAgain: 1}
	d := Decide(stats, onboarded(1.0), config(0.8))
	assert.InDelta(t, 1.1, d.MultiplierAfter, 1e-9)
	assert.Equal(t, 25, d.TotalReviews)
}

func TestDecideStaysOnGrid(t *testing.T) {
	t.Parallel()
	profile := onboarded(1.0)
	stats := statsWith(30, 30)
	for i := 0; i < 5; i++ {
		profile.IntervalMultiplier = Decide(stats, profile, config(0.8)).MultiplierAfter
	}
	assert.Equal(t, 1.5, profile.IntervalMultiplier)
}

func TestDecideSkips(t *testing.T) {
	t.Parallel()

	d := Decide(statsWith(30, 30), nil, config(0.8))
	assert.Equal(t, SkipNotOnboarded, d.Skip)
	assert.True(t, d.Skipped())

	p := onboarded(1.0)
	p.OnboardingCompleted = false
	assert.Equal(t, SkipNotOnboarded, Decide(statsWith(30, 30), p, config(0.8)).Skip)

	cfg := config(0.8)
	cfg.AdaptiveScheduling = false
	assert.Equal(t, SkipAdaptationDisabled, Decide(statsWith(30, 30), onboarded(1.0), cfg).Skip)

	assert.Equal(t, SkipInsufficientReviews, Decide(nil, onboarded(1.0), config(0.8)).Skip)
}

func TestDecideWithoutConfigOnlyLengthens(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 1.1, Decide(statsWith(30, 30), onboarded(1.0), nil).MultiplierAfter, 1e-9)
	assert.Equal(t, 1.0, Decide(statsWith(30, 0), onboarded(1.0), nil).MultiplierAfter)
}

func TestAlreadyAdapted(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	p := onboarded(1.0)
	assert.False(t, AlreadyAdapted(p, now))

	earlier := now.Add(-2 * time.Hour)
	p.LastAdaptationAt = &earlier
	assert.False(t, AlreadyAdapted(p, now), "previous UTC day")

	sameDay := now.Add(time.Hour)
	p.LastAdaptationAt = &sameDay
	assert.True(t, AlreadyAdapted(p, now))
}

func TestMissedDays(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	at := func(daysAgo int) *time.Time {
		v := now.AddDate(0, 0, -daysAgo).Add(-time.Hour)
		return &v
	}

	tests := []struct {
		name       string
		lastActive *time.Time
		since      time.Time
		want       int
	}{
		{"active today", at(0), now, 0},
		{"active yesterday", at(1), now, 0},
		{"active two days ago", at(2), now, 1},
		{"active five days ago", at(5), now, 4},
		{"never active, onboarded today", nil, now, 0},
		{"never active, onboarded four days ago", nil, *at(4), 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MissedDays(tc.lastActive, tc.since, now))
		})
	}
}
