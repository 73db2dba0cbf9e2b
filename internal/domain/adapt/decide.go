// Package adapt holds the pure retuning rule that nudges a user's learned
// interval multiplier toward their observed recall rate.
package adapt

import (
	"math"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// Thresholds used by Decide.
const (
	MinReviewsForAdaptation = 10
	MinReviewsForLengthen   = 20
	HighRecallRate          = 0.9
	MultiplierStep          = 0.1
)

// SkipReason explains why a user's parameters were left alone.
type SkipReason string

// Possible skip reasons
const (
	SkipNone                SkipReason = ""
	SkipInsufficientReviews SkipReason = "insufficient_reviews"
	SkipAdaptationDisabled  SkipReason = "adaptation_disabled"
	SkipAlreadyAdaptedToday SkipReason = "already_adapted_today"
	SkipNotOnboarded        SkipReason = "not_onboarded"
)

// Direction is the way the multiplier moved.
type Direction string

// Possible directions
const (
	Unchanged  Direction = "unchanged"
	Lengthened Direction = "lengthened"
	Shortened  Direction = "shortened"
)

// Decision is the outcome of evaluating one user.
type Decision struct {
	Skip             SkipReason
	RecallRate       float64
	TotalReviews     int
	MultiplierBefore float64
	MultiplierAfter  float64
	Direction        Direction
}

// Skipped reports whether nothing should be persisted for the user.
func (d Decision) Skipped() bool {
	return d.Skip != SkipNone
}

// Decide applies the retuning rule. The profile and config are not modified.
// A nil config means no difficulty threshold is known, so only the
// lengthening branch can fire.
func Decide(stats *domain.ReviewStats, profile *domain.Profile, config *domain.ReviewConfig) Decision {
	d := Decision{Direction: Unchanged}
	if profile != nil {
		d.MultiplierBefore = profile.IntervalMultiplier
		d.MultiplierAfter = profile.IntervalMultiplier
	}

	switch {
	case profile == nil || !profile.OnboardingCompleted:
		d.Skip = SkipNotOnboarded
		return d
	case config != nil && !config.AdaptiveScheduling:
		d.Skip = SkipAdaptationDisabled
		return d
	case stats == nil || stats.TotalCompleted < MinReviewsForAdaptation:
		d.Skip = SkipInsufficientReviews
		if stats != nil {
			d.TotalReviews = stats.TotalCompleted
		}
		return d
	}

	d.TotalReviews = stats.TotalCompleted
	d.RecallRate = stats.AdaptiveRecallRate()

	m := profile.IntervalMultiplier
	switch {
	case d.RecallRate > HighRecallRate && d.TotalReviews >= MinReviewsForLengthen:
		d.MultiplierAfter = math.Min(domain.MaxAdaptiveMultiplier, round2(m+MultiplierStep))
	case config != nil && d.RecallRate < config.DifficultyThreshold:
		d.MultiplierAfter = math.Max(domain.MinAdaptiveMultiplier, round2(m-MultiplierStep))
	}

	switch {
	case d.MultiplierAfter > d.MultiplierBefore:
		d.Direction = Lengthened
	case d.MultiplierAfter < d.MultiplierBefore:
		d.Direction = Shortened
	}

	return d
}

// AlreadyAdapted reports whether the profile was retuned on now's UTC day.
func AlreadyAdapted(profile *domain.Profile, now time.Time) bool {
	return profile.LastAdaptationAt != nil && domain.SameDay(*profile.LastAdaptationAt, now)
}

// MissedDays counts whole UTC days strictly between the last day with any
// review activity and now. When the user never reviewed, the count runs
// from since (typically the onboarding day).
func MissedDays(lastActive *time.Time, since, now time.Time) int {
	from := since
	if lastActive != nil {
		from = *lastActive
	}

	days := int(domain.Day(now).Sub(domain.Day(from)).Hours()/24) - 1
	if days < 0 {
		return 0
	}
	return days
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
