package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeIntervalLapseAlwaysResets(t *testing.T) {
	t.Parallel()
	for _, reviewCount := range []int{0, 1, 2, 7, 50} {
		for _, interval := range []int{1, 6, 30, 365} {
			for _, ease := range []float64{1.3, 2.0, 2.5, 3.4} {
				got, _, err := ComputeInterval(domain.RatingAgain, reviewCount, interval, ease)
				require.NoError(t, err)
				assert.Equal(t, 1, got, "count=%d interval=%d ease=%v", reviewCount, interval, ease)
			}
		}
	}
}

func TestComputeIntervalInvariants(t *testing.T) {
	t.Parallel()
	for _, rating := range domain.AllRatings {
		for _, reviewCount := range []int{-3, 0, 1, 2, 10} {
			for _, interval := range []int{-5, 0, 1, 4, 100} {
				for _, ease := range []float64{-1, 0, 1.0, 1.3, 1.31, 2.5, 5} {
					gotInterval, gotEase, err := ComputeInterval(rating, reviewCount, interval, ease)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, gotInterval, 1)
					assert.GreaterOrEqual(t, gotEase, 1.3)
				}
			}
		}
	}
}

func TestComputeIntervalEarlyReviews(t *testing.T) {
	t.Parallel()

	interval, ease, err := ComputeInterval(domain.RatingGood, 0, 1, 2.5)
	require.NoError(t, err)
	assert.Equal(t, 1, interval)
	assert.Equal(t, 2.5, ease)

	interval, ease, err = ComputeInterval(domain.RatingGood, 1, 1, 2.5)
	require.NoError(t, err)
	assert.Equal(t, 6, interval)
	assert.Equal(t, 2.5, ease)
}

func TestComputeIntervalRejectsUnknownRating(t *testing.T) {
	t.Parallel()
	_, _, err := ComputeInterval(domain.ReviewRating("PERFECT"), 0, 1, 2.5)
	assert.ErrorIs(t, err, ErrInvalidRating)
}

// A new item rated EASY then GOOD follows the fixed 1 then 6 day steps even
// though the EASY rating bumped the ease factor.
func TestEasyThenGoodScenario(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	item, err := domain.NewItem(uuid.New(), "Dana's birthday", "June 3rd", now.Add(-48*time.Hour))
	require.NoError(t, err)

	first, err := svc.CalculateNextReview(item, domain.RatingEasy, now, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.IntervalDays)
	assert.InDelta(t, 2.6, first.EaseFactor, 1e-9)
	assert.Equal(t, 1, first.ReviewCount)

	second, err := svc.CalculateNextReview(first, domain.RatingGood, now.Add(24*time.Hour), nil)
	require.NoError(t, err)
	assert.Equal(t, 6, second.IntervalDays)
	assert.InDelta(t, 2.6, second.EaseFactor, 1e-9)
	assert.Equal(t, 2, second.ReviewCount)

	third, err := svc.CalculateNextReview(second, domain.RatingGood, now.Add(7*24*time.Hour), nil)
	require.NoError(t, err)
	assert.Equal(t, 16, third.IntervalDays)
}

func TestCalculateNextReviewPersonalized(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()

	item := &domain.Item{
		ID: uuid.New(), UserID: uuid.New(), State: domain.ItemStateActive,
		IntervalDays: 20, EaseFactor: 2.5, ReviewCount: 3,
	}

	got, err := svc.CalculateNextReview(item, domain.RatingGood, now, &Personalization{
		ConfigMultiplier:  1.5,
		ProfileMultiplier: 2.0,
		MaxIntervalDays:   60,
	})
	require.NoError(t, err)
	assert.Equal(t, 60, got.IntervalDays)
}

func TestCalculateNextReviewErrors(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()
	item := &domain.Item{ID: uuid.New(), UserID: uuid.New(), IntervalDays: 1, EaseFactor: 2.5}

	_, err := svc.CalculateNextReview(nil, domain.RatingGood, now, nil)
	assert.ErrorIs(t, err, ErrNilItem)

	_, err = svc.CalculateNextReview(item, "MAYBE", now, nil)
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.CalculateNextReview(item, domain.RatingGood, now, &Personalization{1, 1, 0})
	assert.ErrorIs(t, err, ErrInvalidPersonalization)
}

func TestNewPersonalization(t *testing.T) {
	t.Parallel()
	p := NewPersonalization(
		&domain.Profile{IntervalMultiplier: 1.2},
		&domain.ReviewConfig{IntervalMultiplier: 0.8, MaxIntervalDays: 21},
	)
	assert.Equal(t, Personalization{ConfigMultiplier: 0.8, ProfileMultiplier: 1.2, MaxIntervalDays: 21}, p)
}
