package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/personalize"
	"github.com/phrazzld/recall-api/internal/service"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/store"
)

// MapErrorToStatusCode maps a service error to the HTTP status the client
// sees. Anything unrecognised is a 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	case store.IsNotFoundError(err):
		return http.StatusNotFound

	case store.IsDuplicateError(err):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidEnum),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, personalize.ErrInvalidAnswers):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes the wrapped detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return "Invalid token"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this item"

	case errors.Is(err, store.ErrItemNotFound):
		return "Item not found"
	case errors.Is(err, store.ErrProfileNotFound):
		return "Profile not found"
	case errors.Is(err, store.ErrReviewConfigNotFound):
		return "Review config not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrProfileExists):
		return "Profile already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	case errors.Is(err, domain.ErrInvalidRating):
		return "Invalid rating"
	case errors.Is(err, personalize.ErrInvalidAnswers):
		return "Invalid onboarding answers"
	case MapErrorToStatusCode(err) == http.StatusBadRequest:
		return "Invalid request"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator failure into "Invalid <field>:
// <reason>" for the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// respondWithServiceError writes the mapped status and safe message for err.
// fallback replaces the generic 500 message.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		msg = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}
