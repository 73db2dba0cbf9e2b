package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	apimiddleware "github.com/phrazzld/recall-api/internal/api/middleware"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/service/profile"
	"github.com/phrazzld/recall-api/internal/service/review"
)

// RouterConfig carries what NewRouter needs to mount every endpoint.
type RouterConfig struct {
	JWTService     auth.JWTService
	ReviewService  review.Service
	ProfileService profile.Service
	Logger         *slog.Logger
	// RequestTimeout bounds each request. Zero disables the timeout.
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler. Everything except /health sits under
// /api behind bearer authentication.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reviewHandler := NewReviewHandler(cfg.ReviewService, logger)
	profileHandler := NewProfileHandler(cfg.ProfileService, logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(cfg.JWTService)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(apimiddleware.Trace(logger))
	r.Use(chimiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/due", reviewHandler.GetDueItems)
			r.Get("/due/count", reviewHandler.GetDueCount)
			r.Get("/stats", reviewHandler.GetStats)
			r.Post("/interval", reviewHandler.ComputeInterval)
			r.Post("/{id}", reviewHandler.SubmitReview)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Put("/", profileHandler.UpdateProfile)
			r.Post("/onboarding", profileHandler.Onboard)
			r.Get("/review-config", profileHandler.GetReviewConfig)
			r.Put("/review-config", profileHandler.UpdateReviewConfig)
			r.Get("/check-in", profileHandler.GetCheckInStatus)
			r.Post("/check-in", profileHandler.SubmitCheckIn)
			r.Get("/analytics", profileHandler.GetAnalytics)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
