package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/personalize"
	"github.com/phrazzld/recall-api/internal/service"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/service/review"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "expired token", err: auth.ErrExpiredToken, status: http.StatusUnauthorized, message: "Token expired"},
		{name: "wrong token type", err: auth.ErrWrongTokenType, status: http.StatusUnauthorized, message: "Invalid token"},
		{name: "not owned", err: review.ErrItemNotOwned, status: http.StatusForbidden, message: "You do not own this item"},
		{name: "item not found", err: review.ErrItemNotFound, status: http.StatusNotFound, message: "Item not found"},
		{name: "profile not found", err: store.ErrProfileNotFound, status: http.StatusNotFound, message: "Profile not found"},
		{name: "config not found", err: store.ErrReviewConfigNotFound, status: http.StatusNotFound, message: "Review config not found"},
		{name: "already onboarded", err: store.ErrProfileExists, status: http.StatusConflict, message: "Profile already exists"},
		{name: "invalid rating", err: domain.ErrInvalidRating, status: http.StatusBadRequest, message: "Invalid rating"},
		{name: "invalid limit", err: review.ErrInvalidLimit, status: http.StatusBadRequest, message: "Invalid request"},
		{
			name:    "invalid answers",
			err:     fmt.Errorf("%w: %w", service.ErrInvalidInput, personalize.ErrInvalidAnswers),
			status:  http.StatusBadRequest,
			message: "Invalid onboarding answers",
		},
		{
			name:    "wrapped storage failure",
			err:     service.NewServiceError("review", "submit", "storage error", errors.New("conn reset")),
			status:  http.StatusInternalServerError,
			message: "An unexpected error occurred",
		},
		{
			name:    "store failure wrapping not found",
			err:     store.NewStoreError("item", "get", "lookup", store.ErrItemNotFound),
			status:  http.StatusNotFound,
			message: "Item not found",
		},
		{
			name:    "store scan failure",
			err:     store.NewStoreError("profile", "list onboarded", "scan row", errors.New("bad uuid")),
			status:  http.StatusInternalServerError,
			message: "An unexpected error occurred",
		},
		{name: "nil", err: nil, status: http.StatusInternalServerError, message: "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.status, MapErrorToStatusCode(tc.err))
			assert.Equal(t, tc.message, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	v := validator.New()

	err := v.Struct(SubmitReviewRequest{})
	assert.Equal(t, "Invalid Rating: required field", SanitizeValidationError(err))

	err = v.Struct(SubmitReviewRequest{Rating: "MEH"})
	assert.Equal(t, "Invalid Rating: invalid value", SanitizeValidationError(err))

	err = v.Struct(IntervalRequest{Rating: "GOOD", ReviewCount: -1})
	assert.Equal(t, "Invalid ReviewCount: too small", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
