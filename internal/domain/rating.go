package domain

import "strings"

// ReviewRating is the user's self-assessed recall for a single review.
type ReviewRating string

// Possible review rating values
const (
	RatingAgain ReviewRating = "AGAIN"
	RatingHard  ReviewRating = "HARD"
	RatingGood  ReviewRating = "GOOD"
	RatingEasy  ReviewRating = "EASY"
)

// AllRatings lists the ratings in ascending order of recall quality.
var AllRatings = []ReviewRating{RatingAgain, RatingHard, RatingGood, RatingEasy}

// ParseRating converts a case-insensitive rating name into a ReviewRating.
func ParseRating(s string) (ReviewRating, error) {
	r := ReviewRating(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRating
	}
	return r, nil
}

// Valid reports whether r is one of the four known ratings.
func (r ReviewRating) Valid() bool {
	switch r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return true
	default:
		return false
	}
}

// IsLapse reports whether the rating counts as a lapse.
func (r ReviewRating) IsLapse() bool {
	return r == RatingAgain
}
