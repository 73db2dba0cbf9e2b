package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/review"
)

// DueItemResponse is one entry of the due set.
type DueItemResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	ImageURL     string     `json:"image_url,omitempty"`
	NextReviewAt *time.Time `json:"next_review_at,omitempty"`
	IntervalDays int        `json:"interval_days"`
	ReviewCount  int        `json:"review_count"`
}

// DueItemsResponse is the body of GET /reviews/due.
type DueItemsResponse struct {
	Items []DueItemResponse `json:"items"`
	Count int               `json:"count"`
}

// SubmitReviewRequest is the body of POST /reviews/{id}. Rating names are
// matched case-insensitively.
type SubmitReviewRequest struct {
	Rating string `json:"rating" validate:"required"`
}

// IntervalRequest is the body of POST /reviews/interval.
type IntervalRequest struct {
	Rating       string  `json:"rating" validate:"required"`
	ReviewCount  int     `json:"review_count" validate:"gte=0"`
	IntervalDays int     `json:"interval_days" validate:"gte=0"`
	EaseFactor   float64 `json:"ease_factor" validate:"gte=0"`
}

// IntervalResponse is the result of the stateless SM-2 calculator.
type IntervalResponse struct {
	IntervalDays int     `json:"interval_days"`
	EaseFactor   float64 `json:"ease_factor"`
}

// ReviewHandler serves the review endpoints.
type ReviewHandler struct {
	reviews review.Service
	logger  *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews review.Service, logger *slog.Logger) *ReviewHandler {
	if reviews == nil {
		panic("review service cannot be nil for ReviewHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ReviewHandler")
	}
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "review_handler")),
	}
}

// GetDueItems handles GET /reviews/due.
func (h *ReviewHandler) GetDueItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	items, err := h.reviews.GetDueItems(r.Context(), userID, limit)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get due items")
		return
	}

	resp := DueItemsResponse{Items: make([]DueItemResponse, 0, len(items)), Count: len(items)}
	for _, item := range items {
		resp.Items = append(resp.Items, dueItemToResponse(item))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetDueCount handles GET /reviews/due/count.
func (h *ReviewHandler) GetDueCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	n, err := h.reviews.GetDueCount(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to count due items")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]int{"due_count": n})
}

// SubmitReview handles POST /reviews/{id}.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rating, err := domain.ParseRating(req.Rating)
	if err != nil {
		respondWithServiceError(w, r, err, "")
		return
	}

	result, err := h.reviews.SubmitReview(r.Context(), userID, itemID, rating)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("item_id", itemID.String()),
		slog.String("rating", string(rating)),
		slog.Int("interval_days", result.IntervalDays))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GetStats handles GET /reviews/stats.
func (h *ReviewHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	report, err := h.reviews.GetStats(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get review stats")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// ComputeInterval handles POST /reviews/interval. It touches no state.
func (h *ReviewHandler) ComputeInterval(w http.ResponseWriter, r *http.Request) {
	var req IntervalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rating, err := domain.ParseRating(req.Rating)
	if err != nil {
		respondWithServiceError(w, r, err, "")
		return
	}

	interval, ease, err := srs.ComputeInterval(rating, req.ReviewCount, req.IntervalDays, req.EaseFactor)
	if err != nil {
		respondWithServiceError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, IntervalResponse{IntervalDays: interval, EaseFactor: ease})
}

func dueItemToResponse(item *domain.Item) DueItemResponse {
	return DueItemResponse{
		ID:           item.ID.String(),
		Title:        item.Title,
		Body:         item.Body,
		ImageURL:     item.ImageURL,
		NextReviewAt: item.NextReviewAt,
		IntervalDays: item.IntervalDays,
		ReviewCount:  item.ReviewCount,
	}
}
