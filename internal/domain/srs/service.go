package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// Common errors
var (
	ErrNilItem                = errors.New("item cannot be nil")
	ErrInvalidRating          = domain.ErrInvalidRating
	ErrInvalidPersonalization = errors.New("personalization multipliers must be positive and max interval at least 1")
)

// Personalization carries the per-user scaling applied on top of the raw
// SM-2 interval. Both multipliers are composed multiplicatively.
type Personalization struct {
	// ConfigMultiplier is the pace-derived ReviewConfig.IntervalMultiplier.
	ConfigMultiplier float64
	// ProfileMultiplier is the retuner-learned Profile.IntervalMultiplier.
	ProfileMultiplier float64
	// MaxIntervalDays caps the personalized interval.
	MaxIntervalDays int
}

// NewPersonalization builds the scaling for a user from their profile and config.
func NewPersonalization(profile *domain.Profile, config *domain.ReviewConfig) Personalization {
	return Personalization{
		ConfigMultiplier:  config.IntervalMultiplier,
		ProfileMultiplier: profile.IntervalMultiplier,
		MaxIntervalDays:   config.MaxIntervalDays,
	}
}

func (p Personalization) valid() bool {
	return p.ConfigMultiplier > 0 && p.ProfileMultiplier > 0 && p.MaxIntervalDays >= domain.MinIntervalDays
}

// Service defines the interface for SRS algorithm operations
type Service interface {
	// ComputeInterval runs the bare SM-2 update and returns the new interval
	// in days and the new ease factor.
	ComputeInterval(
		rating domain.ReviewRating,
		reviewCount int,
		intervalDays int,
		easeFactor float64,
	) (int, float64, error)

	// CalculateNextReview returns a copy of item rescheduled for a review at
	// now. A nil personalization schedules with the raw SM-2 interval.
	CalculateNextReview(
		item *domain.Item,
		rating domain.ReviewRating,
		now time.Time,
		p *Personalization,
	) (*domain.Item, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

var defaultParams = NewDefaultParams()

// ComputeInterval is the pure SM-2 calculator with default parameters:
//
//	(rating, reviewCount, intervalDays, easeFactor) -> (intervalDays, easeFactor)
//
// Out-of-range inputs are clamped; the outputs always satisfy
// intervalDays >= 1 and easeFactor >= 1.3.
func ComputeInterval(
	rating domain.ReviewRating,
	reviewCount int,
	intervalDays int,
	easeFactor float64,
) (int, float64, error) {
	return computeInterval(rating, reviewCount, intervalDays, easeFactor, defaultParams)
}

func computeInterval(
	rating domain.ReviewRating,
	reviewCount int,
	intervalDays int,
	easeFactor float64,
	params *Params,
) (int, float64, error) {
	if !rating.Valid() {
		return 0, 0, ErrInvalidRating
	}

	quality := params.Quality[rating]
	newEF := calculateNewEaseFactor(easeFactor, quality, params)
	newInterval := calculateNewInterval(quality, reviewCount, intervalDays, newEF, params)

	return newInterval, newEF, nil
}

// ComputeInterval implements Service.ComputeInterval
func (s *defaultService) ComputeInterval(
	rating domain.ReviewRating,
	reviewCount int,
	intervalDays int,
	easeFactor float64,
) (int, float64, error) {
	return computeInterval(rating, reviewCount, intervalDays, easeFactor, s.params)
}

// CalculateNextReview implements Service.CalculateNextReview
func (s *defaultService) CalculateNextReview(
	item *domain.Item,
	rating domain.ReviewRating,
	now time.Time,
	p *Personalization,
) (*domain.Item, error) {
	if item == nil {
		return nil, ErrNilItem
	}

	if !rating.Valid() {
		return nil, ErrInvalidRating
	}

	if p != nil && !p.valid() {
		return nil, ErrInvalidPersonalization
	}

	return calculateNextItem(item, rating, now, p, s.params), nil
}
