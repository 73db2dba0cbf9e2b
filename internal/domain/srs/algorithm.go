package srs

import (
	"math"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor for a review of the
// given quality using the SM-2 update
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// The result is floored at params.MinEaseFactor. A current ease already below
// the floor is raised to it before the update is applied.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	if currentEF < params.MinEaseFactor {
		currentEF = params.MinEaseFactor
	}

	q := float64(quality)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the number of days until the next review.
//
// Algorithm behavior:
//   - A lapse (quality below params.LapseQualityThreshold) resets the schedule
//     to params.LapseInterval regardless of history
//   - The first successful review (reviewCount 0) yields params.FirstInterval
//   - The second (reviewCount 1) yields params.SecondInterval
//   - Later reviews multiply the current interval by the new ease factor and
//     round to the nearest day
//
// The returned interval is never below domain.MinIntervalDays.
func calculateNewInterval(
	quality int,
	reviewCount int,
	currentInterval int,
	newEaseFactor float64,
	params *Params,
) int {
	var interval int
	switch {
	case quality < params.LapseQualityThreshold:
		interval = params.LapseInterval
	case reviewCount <= 0:
		interval = params.FirstInterval
	case reviewCount == 1:
		interval = params.SecondInterval
	default:
		if currentInterval < domain.MinIntervalDays {
			currentInterval = domain.MinIntervalDays
		}
		interval = int(math.Round(float64(currentInterval) * newEaseFactor))
	}

	if interval < domain.MinIntervalDays {
		interval = domain.MinIntervalDays
	}
	return interval
}

// personalizeInterval scales a computed interval by both multipliers and
// clamps it to [domain.MinIntervalDays, maxIntervalDays].
func personalizeInterval(interval int, p Personalization) int {
	scaled := int(math.Round(float64(interval) * p.ConfigMultiplier * p.ProfileMultiplier))

	if scaled > p.MaxIntervalDays {
		scaled = p.MaxIntervalDays
	}
	if scaled < domain.MinIntervalDays {
		scaled = domain.MinIntervalDays
	}
	return scaled
}

// calculateNextItem creates a new Item with the schedule that follows a
// review. The original item is never modified.
//
// Algorithm behavior:
//   - Computes ease and interval from the item's pre-review state
//   - Applies personalization when p is non-nil
//   - Sets LastReviewedAt to now and NextReviewAt to now plus the interval
//   - Increments ReviewCount, and LapseCount for AGAIN ratings
func calculateNextItem(
	item *domain.Item,
	rating domain.ReviewRating,
	now time.Time,
	p *Personalization,
	params *Params,
) *domain.Item {
	quality := params.Quality[rating]

	next := item.Clone()
	next.EaseFactor = calculateNewEaseFactor(item.EaseFactor, quality, params)
	next.IntervalDays = calculateNewInterval(quality, item.ReviewCount, item.IntervalDays, next.EaseFactor, params)

	if p != nil {
		next.IntervalDays = personalizeInterval(next.IntervalDays, *p)
	}

	reviewedAt := now.UTC()
	nextReviewAt := reviewedAt.Add(time.Duration(next.IntervalDays) * 24 * time.Hour)
	next.LastReviewedAt = &reviewedAt
	next.NextReviewAt = &nextReviewAt

	next.ReviewCount++
	if rating.IsLapse() {
		next.LapseCount++
	}
	next.UpdatedAt = reviewedAt

	return next
}
