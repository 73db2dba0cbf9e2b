package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

const profileColumns = `user_id, learning_style, skill_level, primary_goal, preferred_pace,
	daily_time_commitment, preferred_review_time, areas_of_interest, optimal_review_interval,
	average_recall_rate, consecutive_missed_days, last_check_in_date, total_check_ins,
	last_adaptation_at, onboarding_completed, created_at, updated_at`

// PostgresProfileStore implements store.ProfileStore.
type PostgresProfileStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProfileStore creates a profile store over a connection or transaction.
func NewPostgresProfileStore(db store.DBTX, logger *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProfileStore{
		db:     db,
		logger: logger.With(slog.String("component", "profile_store")),
	}
}

var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// Create implements store.ProfileStore.Create.
func (s *PostgresProfileStore) Create(ctx context.Context, p *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	areas, err := json.Marshal(nonNil(p.AreasOfInterest))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		p.UserID, p.LearningStyle, p.SkillLevel, p.PrimaryGoal, p.PreferredPace,
		p.DailyTimeCommitment, nullString(p.PreferredReviewTime), string(areas), p.IntervalMultiplier,
		p.AverageRecallRate, p.ConsecutiveMissedDays, p.LastCheckInDate, p.TotalCheckIns,
		p.LastAdaptationAt, p.OnboardingCompleted, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrProfileExists
		}
		log.Error("failed to create profile",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return MapError(err, nil)
	}
	return nil
}

// Get implements store.ProfileStore.Get.
func (s *PostgresProfileStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return s.get(ctx, userID, "")
}

// GetForUpdate implements store.ProfileStore.GetForUpdate.
func (s *PostgresProfileStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return s.get(ctx, userID, " FOR UPDATE")
}

func (s *PostgresProfileStore) get(ctx context.Context, userID uuid.UUID, suffix string) (*domain.Profile, error) {
	var (
		p                        domain.Profile
		reviewTime               sql.NullString
		areas                    []byte
		lastCheckIn, lastAdapted sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`+suffix, userID).Scan(
		&p.UserID, &p.LearningStyle, &p.SkillLevel, &p.PrimaryGoal, &p.PreferredPace,
		&p.DailyTimeCommitment, &reviewTime, &areas, &p.IntervalMultiplier,
		&p.AverageRecallRate, &p.ConsecutiveMissedDays, &lastCheckIn, &p.TotalCheckIns,
		&lastAdapted, &p.OnboardingCompleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, MapError(err, store.ErrProfileNotFound)
	}

	p.PreferredReviewTime = reviewTime.String
	if err := json.Unmarshal(areas, &p.AreasOfInterest); err != nil {
		return nil, store.NewStoreError("profile", "get", "decode areas_of_interest", err)
	}
	p.LastCheckInDate = timePtr(lastCheckIn)
	p.LastAdaptationAt = timePtr(lastAdapted)
	return &p, nil
}

// Update implements store.ProfileStore.Update.
func (s *PostgresProfileStore) Update(ctx context.Context, p *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	areas, err := json.Marshal(nonNil(p.AreasOfInterest))
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET
			learning_style = $2, skill_level = $3, primary_goal = $4, preferred_pace = $5,
			daily_time_commitment = $6, preferred_review_time = $7, areas_of_interest = $8,
			optimal_review_interval = $9, average_recall_rate = $10, consecutive_missed_days = $11,
			last_check_in_date = $12, total_check_ins = $13, last_adaptation_at = $14,
			onboarding_completed = $15, updated_at = $16
		WHERE user_id = $1`,
		p.UserID, p.LearningStyle, p.SkillLevel, p.PrimaryGoal, p.PreferredPace,
		p.DailyTimeCommitment, nullString(p.PreferredReviewTime), string(areas),
		p.IntervalMultiplier, p.AverageRecallRate, p.ConsecutiveMissedDays,
		p.LastCheckInDate, p.TotalCheckIns, p.LastAdaptationAt,
		p.OnboardingCompleted, p.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update profile",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return MapError(err, store.ErrProfileNotFound)
	}
	return CheckRowsAffected(result, store.ErrProfileNotFound)
}

// ListOnboardedUserIDs implements store.ProfileStore.ListOnboardedUserIDs.
func (s *PostgresProfileStore) ListOnboardedUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM profiles WHERE onboarding_completed ORDER BY user_id`)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, store.NewStoreError("profile", "list onboarded", "scan row", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PostgresReviewConfigStore implements store.ReviewConfigStore.
type PostgresReviewConfigStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewConfigStore creates a config store over a connection or transaction.
func NewPostgresReviewConfigStore(db store.DBTX, logger *slog.Logger) *PostgresReviewConfigStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReviewConfigStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_config_store")),
	}
}

var _ store.ReviewConfigStore = (*PostgresReviewConfigStore)(nil)

// Create implements store.ReviewConfigStore.Create.
func (s *PostgresReviewConfigStore) Create(ctx context.Context, c *domain.ReviewConfig) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_configs (user_id, max_reviews_per_session, prefer_recognition, show_context,
			enable_haptic_feedback, adaptive_scheduling, interval_multiplier, max_interval_days,
			difficulty_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.UserID, c.MaxReviewsPerSession, c.PreferRecognition, c.ShowContext,
		c.EnableHapticFeedback, c.AdaptiveScheduling, c.IntervalMultiplier, c.MaxIntervalDays,
		c.DifficultyThreshold, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create review config",
			slog.String("error", err.Error()),
			slog.String("user_id", c.UserID.String()))
		return MapError(err, nil)
	}
	return nil
}

// Get implements store.ReviewConfigStore.Get.
func (s *PostgresReviewConfigStore) Get(ctx context.Context, userID uuid.UUID) (*domain.ReviewConfig, error) {
	var c domain.ReviewConfig
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, max_reviews_per_session, prefer_recognition, show_context,
			enable_haptic_feedback, adaptive_scheduling, interval_multiplier, max_interval_days,
			difficulty_threshold, created_at, updated_at
		FROM review_configs WHERE user_id = $1`, userID).Scan(
		&c.UserID, &c.MaxReviewsPerSession, &c.PreferRecognition, &c.ShowContext,
		&c.EnableHapticFeedback, &c.AdaptiveScheduling, &c.IntervalMultiplier, &c.MaxIntervalDays,
		&c.DifficultyThreshold, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, MapError(err, store.ErrReviewConfigNotFound)
	}
	return &c, nil
}

// Update implements store.ReviewConfigStore.Update.
func (s *PostgresReviewConfigStore) Update(ctx context.Context, c *domain.ReviewConfig) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE review_configs SET
			max_reviews_per_session = $2, prefer_recognition = $3, show_context = $4,
			enable_haptic_feedback = $5, adaptive_scheduling = $6, interval_multiplier = $7,
			max_interval_days = $8, difficulty_threshold = $9, updated_at = $10
		WHERE user_id = $1`,
		c.UserID, c.MaxReviewsPerSession, c.PreferRecognition, c.ShowContext,
		c.EnableHapticFeedback, c.AdaptiveScheduling, c.IntervalMultiplier,
		c.MaxIntervalDays, c.DifficultyThreshold, c.UpdatedAt,
	)
	if err != nil {
		return MapError(err, store.ErrReviewConfigNotFound)
	}
	return CheckRowsAffected(result, store.ErrReviewConfigNotFound)
}

// PostgresReminderStore implements store.ReminderStore.
type PostgresReminderStore struct {
	db store.DBTX
}

// NewPostgresReminderStore creates a reminder store over a connection or transaction.
func NewPostgresReminderStore(db store.DBTX) *PostgresReminderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresReminderStore{db: db}
}

var _ store.ReminderStore = (*PostgresReminderStore)(nil)

// Create implements store.ReminderStore.Create.
func (s *PostgresReminderStore) Create(ctx context.Context, r *domain.ReminderIntention) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminder_intentions (id, user_id, trigger_type, trigger_value, action,
			if_then_phrase, frequency, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.UserID, r.TriggerType, r.TriggerValue, r.Action,
		r.IfThenPhrase, r.Frequency, r.Enabled, r.CreatedAt,
	)
	return MapError(err, nil)
}

// ListByUser implements store.ReminderStore.ListByUser.
func (s *PostgresReminderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReminderIntention, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, trigger_type, trigger_value, action, if_then_phrase, frequency, enabled, created_at
		FROM reminder_intentions WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.ReminderIntention{}
	for rows.Next() {
		var r domain.ReminderIntention
		if err := rows.Scan(&r.ID, &r.UserID, &r.TriggerType, &r.TriggerValue, &r.Action,
			&r.IfThenPhrase, &r.Frequency, &r.Enabled, &r.CreatedAt); err != nil {
			return nil, store.NewStoreError("reminder", "list", "scan row", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
