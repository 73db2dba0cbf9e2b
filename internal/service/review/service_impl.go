package review

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/ranking"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	stores     *store.Stores
	transactor store.Transactor
	srs        srs.Service
	clock      clock.Clock
	logger     *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option customises a Service.
type Option func(*serviceImpl)

// WithRand sets the random source used for HABIT_BUILDING shuffles.
func WithRand(rng *rand.Rand) Option {
	return func(s *serviceImpl) { s.rng = rng }
}

// NewService creates a review Service. stores is used for reads outside a
// transaction; transactor provides the stores for SubmitReview.
func NewService(
	stores *store.Stores,
	transactor store.Transactor,
	srsService srs.Service,
	clk clock.Clock,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if stores == nil {
		panic("stores cannot be nil")
	}
	if transactor == nil {
		panic("transactor cannot be nil")
	}
	if srsService == nil {
		srsService = srs.NewDefaultService()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &serviceImpl{
		stores:     stores,
		transactor: transactor,
		srs:        srsService,
		clock:      clk,
		logger:     logger.With(slog.String("component", "review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// GetDueItems implements Service.GetDueItems.
func (s *serviceImpl) GetDueItems(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	limit = min(limit, MaxLimit)

	profile, config, err := s.personalization(ctx, s.stores, userID)
	if err != nil {
		log.Error("failed to load personalization",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, newError("get_due_items", "failed to load profile", err)
	}

	if profile == nil || config == nil {
		if limit == 0 {
			limit = DefaultLimit
		}
		items, err := s.listDue(ctx, userID, limit)
		if err != nil {
			return nil, err
		}
		log.Debug("returning unpersonalized due set",
			slog.String("user_id", userID.String()),
			slog.Int("count", len(items)))
		return items, nil
	}

	if limit == 0 {
		limit = min(config.MaxReviewsPerSession, MaxLimit)
	}
	candidates, err := s.listDue(ctx, userID, limit*ranking.CandidateFactor)
	if err != nil {
		return nil, err
	}

	s.rngMu.Lock()
	ranked := ranking.Rank(candidates, profile, limit, s.rng)
	s.rngMu.Unlock()

	log.Debug("returning ranked due set",
		slog.String("user_id", userID.String()),
		slog.String("learning_style", string(profile.LearningStyle)),
		slog.String("primary_goal", string(profile.PrimaryGoal)),
		slog.Int("candidates", len(candidates)),
		slog.Int("count", len(ranked)))
	return ranked, nil
}

// listDue fetches candidates and re-checks the due predicate in Go.
func (s *serviceImpl) listDue(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Item, error) {
	now := s.clock.Now()
	items, err := s.stores.Items.ListDueCandidates(ctx, userID, now, limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list due items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, newError("get_due_items", "failed to list due items", err)
	}

	due := items[:0]
	for _, item := range items {
		if item.IsDueCandidate(now) {
			due = append(due, item)
		}
	}
	return due, nil
}

// GetDueCount implements Service.GetDueCount.
func (s *serviceImpl) GetDueCount(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.stores.Items.CountDue(ctx, userID, s.clock.Now())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count due items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, newError("get_due_count", "failed to count due items", err)
	}
	return n, nil
}

// SubmitReview implements Service.SubmitReview.
func (s *serviceImpl) SubmitReview(
	ctx context.Context,
	userID, itemID uuid.UUID,
	rating domain.ReviewRating,
) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()))

	if !rating.Valid() {
		log.Warn("invalid review rating", slog.String("rating", string(rating)))
		return nil, ErrInvalidRating
	}

	var result *SubmitResult
	err := s.transactor.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
		now := s.clock.Now()

		item, err := tx.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			if errors.Is(err, store.ErrItemNotFound) {
				log.Warn("item not found for review")
				return ErrItemNotFound
			}
			return newError("submit_review", "failed to load item", err)
		}
		if item.UserID != userID {
			log.Warn("user does not own item", slog.String("owner_id", item.UserID.String()))
			return ErrItemNotOwned
		}

		profile, config, err := s.personalization(ctx, tx, userID)
		if err != nil {
			return newError("submit_review", "failed to load profile", err)
		}
		var p *srs.Personalization
		if profile != nil && config != nil {
			pers := srs.NewPersonalization(profile, config)
			p = &pers
		}

		updated, err := s.srs.CalculateNextReview(item, rating, now, p)
		if err != nil {
			return newError("submit_review", "failed to calculate next review", err)
		}
		if err := tx.Items.UpdateSchedule(ctx, updated); err != nil {
			return newError("submit_review", "failed to update schedule", err)
		}
		if err := tx.Stats.Increment(ctx, userID, rating, now); err != nil {
			return newError("submit_review", "failed to update stats", err)
		}
		if _, err := tx.Activity.RecordEngagement(ctx, userID, itemID, now); err != nil {
			return newError("submit_review", "failed to record engagement", err)
		}

		result = &SubmitResult{
			Item:         updated,
			IntervalDays: updated.IntervalDays,
			NextReviewAt: *updated.NextReviewAt,
			Personalized: p != nil,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrItemNotOwned) {
			return nil, err
		}
		log.Error("failed to submit review", slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("review submitted",
		slog.String("rating", string(rating)),
		slog.Int("interval_days", result.IntervalDays),
		slog.Bool("personalized", result.Personalized))
	return result, nil
}

// GetStats implements Service.GetStats.
func (s *serviceImpl) GetStats(ctx context.Context, userID uuid.UUID) (*StatsReport, error) {
	stats, err := s.stores.Stats.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrStatsNotFound) {
			return nil, newError("get_stats", "failed to load stats", err)
		}
		stats = &domain.ReviewStats{UserID: userID}
	}

	due, err := s.GetDueCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StatsReport{
		TotalCompleted:    stats.TotalCompleted,
		TotalAgain:        stats.TotalAgain,
		TotalHard:         stats.TotalHard,
		TotalGood:         stats.TotalGood,
		TotalEasy:         stats.TotalEasy,
		RecallSuccessRate: stats.RecallSuccessPercent(),
		DueCount:          due,
	}, nil
}

// personalization loads the user's completed profile and config. Either is
// nil when missing; a profile that never finished onboarding counts as
// missing.
func (s *serviceImpl) personalization(
	ctx context.Context,
	stores *store.Stores,
	userID uuid.UUID,
) (*domain.Profile, *domain.ReviewConfig, error) {
	profile, err := stores.Profiles.Get(ctx, userID)
	switch {
	case errors.Is(err, store.ErrProfileNotFound):
		return nil, nil, nil
	case err != nil:
		return nil, nil, err
	case !profile.OnboardingCompleted:
		return nil, nil, nil
	}

	config, err := stores.Configs.Get(ctx, userID)
	switch {
	case errors.Is(err, store.ErrReviewConfigNotFound):
		return profile, nil, nil
	case err != nil:
		return nil, nil, err
	}
	return profile, config, nil
}
