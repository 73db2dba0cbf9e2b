package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain/personalize"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/profile"
)

// ProfileHandler serves onboarding, preference and check-in endpoints.
type ProfileHandler struct {
	profiles profile.Service
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles profile.Service, logger *slog.Logger) *ProfileHandler {
	if profiles == nil {
		panic("profile service cannot be nil for ProfileHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ProfileHandler")
	}
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger.With(slog.String("component", "profile_handler")),
	}
}

// Onboard handles POST /profile/onboarding.
func (h *ProfileHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var answers personalize.Answers
	if err := shared.DecodeJSON(r, &answers); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	result, err := h.profiles.Onboard(r.Context(), userID, answers)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to complete onboarding")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user onboarded",
		slog.String("learning_style", string(result.Profile.LearningStyle)),
		slog.String("preferred_pace", string(result.Profile.PreferredPace)))
	shared.RespondWithJSON(w, r, http.StatusCreated, result)
}

// GetProfile handles GET /profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	p, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, p)
}

// UpdateProfile handles PUT /profile.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var update profile.ProfileUpdate
	if !decodeAndValidate(w, r, &update) {
		return
	}

	p, err := h.profiles.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, p)
}

// GetReviewConfig handles GET /profile/review-config.
func (h *ProfileHandler) GetReviewConfig(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	c, err := h.profiles.GetReviewConfig(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get review config")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, c)
}

// UpdateReviewConfig handles PUT /profile/review-config.
func (h *ProfileHandler) UpdateReviewConfig(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var update profile.ReviewConfigUpdate
	if !decodeAndValidate(w, r, &update) {
		return
	}

	c, err := h.profiles.UpdateReviewConfig(r.Context(), userID, update)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update review config")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, c)
}

// GetCheckInStatus handles GET /profile/check-in.
func (h *ProfileHandler) GetCheckInStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	status, err := h.profiles.GetCheckInStatus(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get check-in status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// SubmitCheckIn handles POST /profile/check-in.
func (h *ProfileHandler) SubmitCheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var submission profile.CheckInSubmission
	if !decodeAndValidate(w, r, &submission) {
		return
	}

	result, err := h.profiles.SubmitCheckIn(r.Context(), userID, submission)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to submit check-in")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, result)
}

// GetAnalytics handles GET /profile/analytics.
func (h *ProfileHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	analytics, err := h.profiles.GetAnalytics(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get analytics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, analytics)
}
