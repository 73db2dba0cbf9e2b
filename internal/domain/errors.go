package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidRating is returned when a review rating is not one of
	// AGAIN, HARD, GOOD or EASY.
	ErrInvalidRating = errors.New("invalid review rating")

	// ErrInvalidEnum is returned when a profile enumeration holds an unknown value.
	ErrInvalidEnum = errors.New("invalid enumeration value")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
