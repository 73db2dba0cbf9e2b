package srs

import (
	"github.com/phrazzld/recall-api/internal/domain"
)

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Core limits
	MinEaseFactor float64

	// Quality score (0-5) assigned to each rating
	Quality map[domain.ReviewRating]int

	// Ratings with a quality below this threshold are lapses
	LapseQualityThreshold int

	// Fixed intervals for the early reviews and for lapses
	FirstInterval  int
	SecondInterval int
	LapseInterval  int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinEaseFactor  float64
	FirstInterval  int
	SecondInterval int
	LapseInterval  int
}

// NewDefaultParams creates a new Params instance with the SM-2 defaults
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: domain.MinEaseFactor,

		Quality: map[domain.ReviewRating]int{
			domain.RatingAgain: 0,
			domain.RatingHard:  3,
			domain.RatingGood:  4,
			domain.RatingEasy:  5,
		},

		LapseQualityThreshold: 3,

		FirstInterval:  1,
		SecondInterval: 6,
		LapseInterval:  1,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero values keep the defaults. The ease floor can be raised but never
// lowered below domain.MinEaseFactor.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > domain.MinEaseFactor {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.FirstInterval >= domain.MinIntervalDays {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval >= domain.MinIntervalDays {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval >= domain.MinIntervalDays {
		params.LapseInterval = config.LapseInterval
	}

	return params
}
