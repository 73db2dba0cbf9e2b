package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/checkin"
	"github.com/phrazzld/recall-api/internal/domain/personalize"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service"
	"github.com/phrazzld/recall-api/internal/store"
)

var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	stores     *store.Stores
	transactor store.Transactor
	clock      clock.Clock
	logger     *slog.Logger
}

// NewService creates a profile Service.
func NewService(stores *store.Stores, transactor store.Transactor, clk clock.Clock, logger *slog.Logger) Service {
	if stores == nil {
		panic("stores cannot be nil")
	}
	if transactor == nil {
		panic("transactor cannot be nil")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceImpl{
		stores:     stores,
		transactor: transactor,
		clock:      clk,
		logger:     logger.With(slog.String("component", "profile_service")),
	}
}

// Onboard implements Service.Onboard.
func (s *serviceImpl) Onboard(ctx context.Context, userID uuid.UUID, answers personalize.Answers) (*OnboardingResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	res, err := personalize.FromOnboarding(userID, answers, s.clock.Now())
	if err != nil {
		log.Warn("invalid onboarding answers", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
	}

	err = s.transactor.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
		if err := tx.Profiles.Create(ctx, res.Profile); err != nil {
			return err
		}
		if err := tx.Configs.Create(ctx, res.Config); err != nil {
			return err
		}
		if res.Reminder != nil {
			return tx.Reminders.Create(ctx, res.Reminder)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyOnboarded) {
			log.Warn("onboarding submitted twice")
			return nil, ErrAlreadyOnboarded
		}
		log.Error("failed to store onboarding", slog.String("error", err.Error()))
		return nil, newError("onboard", "failed to store profile", err)
	}

	log.Info("user onboarded",
		slog.String("learning_style", string(res.Profile.LearningStyle)),
		slog.String("preferred_pace", string(res.Profile.PreferredPace)),
		slog.Bool("reminder", res.Reminder != nil))
	return &OnboardingResult{Profile: res.Profile, Config: res.Config, Reminder: res.Reminder}, nil
}

// GetProfile implements Service.GetProfile.
func (s *serviceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	p, err := s.stores.Profiles.Get(ctx, userID)
	if err != nil {
		return nil, s.mapReadError(ctx, "get_profile", userID, err)
	}
	return p, nil
}

// UpdateProfile implements Service.UpdateProfile.
func (s *serviceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.Profile, error) {
	if err := validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}

	var updated *domain.Profile
	err := s.transactor.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
		p, err := tx.Profiles.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		update.apply(p)
		p.UpdatedAt = s.clock.Now()
		if err := tx.Profiles.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, s.mapReadError(ctx, "update_profile", userID, err)
	}
	return updated, nil
}

// GetReviewConfig implements Service.GetReviewConfig.
func (s *serviceImpl) GetReviewConfig(ctx context.Context, userID uuid.UUID) (*domain.ReviewConfig, error) {
	c, err := s.stores.Configs.Get(ctx, userID)
	if err != nil {
		return nil, s.mapReadError(ctx, "get_review_config", userID, err)
	}
	return c, nil
}

// UpdateReviewConfig implements Service.UpdateReviewConfig.
func (s *serviceImpl) UpdateReviewConfig(
	ctx context.Context,
	userID uuid.UUID,
	update ReviewConfigUpdate,
) (*domain.ReviewConfig, error) {
	if err := validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}

	var updated *domain.ReviewConfig
	err := s.transactor.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
		c, err := tx.Configs.Get(ctx, userID)
		if err != nil {
			return err
		}
		update.apply(c)
		c.UpdatedAt = s.clock.Now()
		if err := tx.Configs.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, s.mapReadError(ctx, "update_review_config", userID, err)
	}
	return updated, nil
}

// GetCheckInStatus implements Service.GetCheckInStatus.
func (s *serviceImpl) GetCheckInStatus(ctx context.Context, userID uuid.UUID) (checkin.Status, error) {
	p, err := s.stores.Profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return checkin.Status{}, nil
		}
		return checkin.Status{}, s.mapReadError(ctx, "get_check_in_status", userID, err)
	}
	return checkin.Evaluate(p, s.clock.Now()), nil
}

// SubmitCheckIn implements Service.SubmitCheckIn.
func (s *serviceImpl) SubmitCheckIn(
	ctx context.Context,
	userID uuid.UUID,
	submission CheckInSubmission,
) (*CheckInResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if err := validate.Struct(submission); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	var answers checkin.Answers
	if err := json.Unmarshal(submission.Responses, &answers); err != nil {
		return nil, fmt.Errorf("%w: responses must be a JSON object: %v", service.ErrInvalidInput, err)
	}

	var result *CheckInResult
	err := s.transactor.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
		now := s.clock.Now()

		p, err := tx.Profiles.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		before, after := checkin.Apply(p, answers, now)
		if err := tx.Profiles.Update(ctx, p); err != nil {
			return err
		}

		record := &domain.CheckInRecord{
			ID:            uuid.New(),
			UserID:        userID,
			Type:          submission.Type,
			TriggerReason: submission.TriggerReason,
			Answers:       append(json.RawMessage(nil), submission.Responses...),
			Before:        before,
			After:         after,
			CreatedAt:     now,
		}
		if err := tx.CheckIns.Create(ctx, record); err != nil {
			return err
		}
		result = &CheckInResult{Profile: p, Record: record}
		return nil
	})
	if err != nil {
		return nil, s.mapReadError(ctx, "submit_check_in", userID, err)
	}

	log.Info("check-in processed",
		slog.String("check_in_type", string(submission.Type)),
		slog.Int("total_check_ins", result.Profile.TotalCheckIns))
	return result, nil
}

// GetAnalytics implements Service.GetAnalytics.
func (s *serviceImpl) GetAnalytics(ctx context.Context, userID uuid.UUID) (*Analytics, error) {
	const op = "get_analytics"
	now := s.clock.Now()

	p, err := s.stores.Profiles.Get(ctx, userID)
	if err != nil {
		return nil, s.mapReadError(ctx, op, userID, err)
	}
	out := &Analytics{
		Profile:       p,
		CheckInStatus: checkin.Evaluate(p, now),
		AdaptationHistory: AdaptationHistory{
			CurrentMultiplier: p.IntervalMultiplier,
			CurrentRecallRate: p.AverageRecallRate,
			LastUpdate:        p.LastAdaptationAt,
		},
	}

	c, err := s.stores.Configs.Get(ctx, userID)
	switch {
	case err == nil:
		out.Config = c
		out.AdaptationHistory.ConfigMultiplier = c.IntervalMultiplier
	case !errors.Is(err, store.ErrReviewConfigNotFound):
		return nil, s.mapReadError(ctx, op, userID, err)
	}

	since := domain.Day(now).AddDate(0, 0, -(AnalyticsActivityDays - 1))
	if out.RecentActivity, err = s.stores.Activity.ListSince(ctx, userID, since); err != nil {
		return nil, s.mapReadError(ctx, op, userID, err)
	}
	if out.RecentCheckIns, err = s.stores.CheckIns.ListRecent(ctx, userID, AnalyticsCheckInLimit); err != nil {
		return nil, s.mapReadError(ctx, op, userID, err)
	}
	if out.AdaptationHistory.Records, err = s.stores.Adaptations.ListRecent(ctx, userID, AnalyticsAdaptationLimit); err != nil {
		return nil, s.mapReadError(ctx, op, userID, err)
	}
	if out.Reminders, err = s.stores.Reminders.ListByUser(ctx, userID); err != nil {
		return nil, s.mapReadError(ctx, op, userID, err)
	}
	return out, nil
}

// mapReadError passes expected not-found errors through and wraps the rest.
func (s *serviceImpl) mapReadError(ctx context.Context, op string, userID uuid.UUID, err error) error {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return ErrProfileNotFound
	case errors.Is(err, ErrReviewConfigNotFound):
		return ErrReviewConfigNotFound
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("profile operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
		slog.String("user_id", userID.String()))
	return newError(op, "storage error", err)
}
