package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// PostgresStatsStore implements store.StatsStore.
type PostgresStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStatsStore creates a stats store over a connection or transaction.
func NewPostgresStatsStore(db store.DBTX, logger *slog.Logger) *PostgresStatsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

var _ store.StatsStore = (*PostgresStatsStore)(nil)

// Get implements store.StatsStore.Get.
func (s *PostgresStatsStore) Get(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error) {
	var st domain.ReviewStats
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, total_completed, total_again, total_hard, total_good, total_easy, updated_at
		FROM review_stats WHERE user_id = $1`, userID).Scan(
		&st.UserID, &st.TotalCompleted, &st.TotalAgain, &st.TotalHard, &st.TotalGood, &st.TotalEasy, &st.UpdatedAt,
	)
	if err != nil {
		return nil, MapError(err, store.ErrStatsNotFound)
	}
	return &st, nil
}

// Increment implements store.StatsStore.Increment. Counters are bumped in
// SQL so concurrent reviews never lose updates.
func (s *PostgresStatsStore) Increment(ctx context.Context, userID uuid.UUID, rating domain.ReviewRating, at time.Time) error {
	if !rating.Valid() {
		return domain.ErrInvalidRating
	}

	bucket := func(r domain.ReviewRating) int {
		if rating == r {
			return 1
		}
		return 0
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_stats (user_id, total_completed, total_again, total_hard, total_good, total_easy, updated_at)
		VALUES ($1, 1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			total_completed = review_stats.total_completed + 1,
			total_again = review_stats.total_again + EXCLUDED.total_again,
			total_hard = review_stats.total_hard + EXCLUDED.total_hard,
			total_good = review_stats.total_good + EXCLUDED.total_good,
			total_easy = review_stats.total_easy + EXCLUDED.total_easy,
			updated_at = EXCLUDED.updated_at`,
		userID,
		bucket(domain.RatingAgain), bucket(domain.RatingHard), bucket(domain.RatingGood), bucket(domain.RatingEasy),
		at.UTC(),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to increment review stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("rating", string(rating)))
		return MapError(err, nil)
	}
	return nil
}
