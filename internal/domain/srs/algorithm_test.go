package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	tests := []struct {
		name      string
		currentEF float64
		quality   int
		want      float64
	}{
		{"again lowers ease by 0.8", 2.5, 0, 1.7},
		{"hard lowers ease by 0.14", 2.5, 3, 2.36},
		{"good keeps ease", 2.5, 4, 2.5},
		{"easy raises ease by 0.1", 2.5, 5, 2.6},
		{"again at floor stays at floor", 1.3, 0, 1.3},
		{"hard near floor is floored", 1.35, 3, 1.3},
		{"ease below floor is raised first", 1.0, 4, 1.3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewEaseFactor(tc.currentEF, tc.quality, params)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestCalculateNewInterval(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	tests := []struct {
		name            string
		quality         int
		reviewCount     int
		currentInterval int
		easeFactor      float64
		want            int
	}{
		{"lapse resets long interval", 0, 12, 90, 2.5, 1},
		{"first review", 4, 0, 1, 2.5, 1},
		{"second review", 4, 1, 1, 2.5, 6},
		{"second review ignores current interval", 5, 1, 40, 2.6, 6},
		{"third review multiplies by ease", 4, 2, 6, 2.5, 15},
		{"rounds half away from zero", 4, 2, 5, 2.5, 13},
		{"rounds to the nearest day", 3, 3, 10, 2.36, 24},
		{"invalid current interval is clamped", 4, 5, 0, 2.5, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewInterval(tc.quality, tc.reviewCount, tc.currentInterval, tc.easeFactor, params)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPersonalizeInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		interval int
		p        Personalization
		want     int
	}{
		{"neutral multipliers", 15, Personalization{1.0, 1.0, 30}, 15},
		{"composed multiplicatively", 6, Personalization{0.8, 1.1, 21}, 5},
		{"capped at max interval", 50, Personalization{1.5, 2.0, 60}, 60},
		{"floored at one day", 1, Personalization{0.8, 0.5, 21}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, personalizeInterval(tc.interval, tc.p))
		})
	}
}

func TestCalculateNextItem(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

	item, err := domain.NewItem(uuid.New(), "title", "body", now.Add(-72*time.Hour))
	require.NoError(t, err)

	next := calculateNextItem(item, domain.RatingAgain, now, nil, params)

	assert.Equal(t, 1, next.IntervalDays)
	assert.InDelta(t, 1.7, next.EaseFactor, 1e-9)
	assert.Equal(t, 1, next.ReviewCount)
	assert.Equal(t, 1, next.LapseCount)
	require.NotNil(t, next.LastReviewedAt)
	require.NotNil(t, next.NextReviewAt)
	assert.True(t, next.LastReviewedAt.Equal(now))
	assert.True(t, next.NextReviewAt.Equal(now.Add(24*time.Hour)))
	assert.True(t, next.UpdatedAt.Equal(now))

	// The input is left untouched
	assert.Equal(t, 0, item.ReviewCount)
	assert.Nil(t, item.LastReviewedAt)
	assert.Equal(t, domain.DefaultEaseFactor, item.EaseFactor)
}

func TestNextReviewIsLastReviewPlusInterval(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

	item := &domain.Item{
		ID: uuid.New(), UserID: uuid.New(), State: domain.ItemStateActive,
		IntervalDays: 10, EaseFactor: 2.2, ReviewCount: 4,
	}

	for _, rating := range domain.AllRatings {
		next := calculateNextItem(item, rating, now, &Personalization{1.5, 1.2, 60}, params)
		want := next.LastReviewedAt.Add(time.Duration(next.IntervalDays) * 24 * time.Hour)
		assert.True(t, next.NextReviewAt.Equal(want), "rating %s", rating)
		assert.Equal(t, rating == domain.RatingAgain, next.LapseCount == 1, "rating %s", rating)
	}
}
