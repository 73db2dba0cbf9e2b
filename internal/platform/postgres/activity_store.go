package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// PostgresActivityStore implements store.ActivityStore on the
// review_engagements ledger and the daily_activity rollup.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates an activity store over a connection or transaction.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// RecordEngagement implements store.ActivityStore.RecordEngagement.
func (s *PostgresActivityStore) RecordEngagement(ctx context.Context, userID, itemID uuid.UUID, at time.Time) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	day := domain.Day(at)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO review_engagements (user_id, item_id, day)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`, userID, itemID, day)
	if err != nil {
		log.Error("failed to record engagement",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return false, MapError(err, nil)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted == 0 {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_activity (user_id, day, reviews_completed)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, day) DO UPDATE SET
			reviews_completed = daily_activity.reviews_completed + 1`, userID, day)
	if err != nil {
		return false, MapError(err, nil)
	}
	return true, nil
}

// LastActiveDay implements store.ActivityStore.LastActiveDay.
func (s *PostgresActivityStore) LastActiveDay(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(day) FROM daily_activity WHERE user_id = $1`, userID).Scan(&last)
	if err != nil {
		return nil, MapError(err, nil)
	}
	return timePtr(last), nil
}

// ListSince implements store.ActivityStore.ListSince.
func (s *PostgresActivityStore) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*domain.DailyActivity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, day, reviews_completed
		FROM daily_activity
		WHERE user_id = $1 AND day >= $2
		ORDER BY day DESC`, userID, domain.Day(since))
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.DailyActivity{}
	for rows.Next() {
		var a domain.DailyActivity
		if err := rows.Scan(&a.UserID, &a.Day, &a.ReviewsCompleted); err != nil {
			return nil, store.NewStoreError("daily activity", "list", "scan row", err)
		}
		a.Day = a.Day.UTC()
		out = append(out, &a)
	}
	return out, rows.Err()
}

// PostgresAdaptationStore implements store.AdaptationStore.
type PostgresAdaptationStore struct {
	db store.DBTX
}

// NewPostgresAdaptationStore creates an adaptation record store.
func NewPostgresAdaptationStore(db store.DBTX) *PostgresAdaptationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresAdaptationStore{db: db}
}

var _ store.AdaptationStore = (*PostgresAdaptationStore)(nil)

// Create implements store.AdaptationStore.Create.
func (s *PostgresAdaptationStore) Create(ctx context.Context, r *domain.AdaptationRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adaptation_records (id, user_id, recall_rate, total_reviews,
			multiplier_before, multiplier_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.UserID, r.RecallRate, r.TotalReviews, r.MultiplierBefore, r.MultiplierAfter, r.CreatedAt,
	)
	return MapError(err, nil)
}

// ListRecent implements store.AdaptationStore.ListRecent.
func (s *PostgresAdaptationStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AdaptationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, recall_rate, total_reviews, multiplier_before, multiplier_after, created_at
		FROM adaptation_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.AdaptationRecord{}
	for rows.Next() {
		var r domain.AdaptationRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.RecallRate, &r.TotalReviews,
			&r.MultiplierBefore, &r.MultiplierAfter, &r.CreatedAt); err != nil {
			return nil, store.NewStoreError("adaptation record", "list", "scan row", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// PostgresCheckInStore implements store.CheckInStore.
type PostgresCheckInStore struct {
	db store.DBTX
}

// NewPostgresCheckInStore creates a check-in record store.
func NewPostgresCheckInStore(db store.DBTX) *PostgresCheckInStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresCheckInStore{db: db}
}

var _ store.CheckInStore = (*PostgresCheckInStore)(nil)

// Create implements store.CheckInStore.Create.
func (s *PostgresCheckInStore) Create(ctx context.Context, r *domain.CheckInRecord) error {
	before, err := json.Marshal(r.Before)
	if err != nil {
		return err
	}
	after, err := json.Marshal(r.After)
	if err != nil {
		return err
	}
	answers := r.Answers
	if len(answers) == 0 {
		answers = json.RawMessage("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO check_in_records (id, user_id, check_in_type, trigger_reason, answers,
			profile_before, profile_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.UserID, r.Type, nullString(r.TriggerReason), string(answers),
		string(before), string(after), r.CreatedAt,
	)
	return MapError(err, nil)
}

// ListRecent implements store.CheckInStore.ListRecent.
func (s *PostgresCheckInStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CheckInRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, check_in_type, trigger_reason, answers, profile_before, profile_after, created_at
		FROM check_in_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.CheckInRecord{}
	for rows.Next() {
		var (
			r                      domain.CheckInRecord
			reason                 sql.NullString
			answers, before, after []byte
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Type, &reason, &answers, &before, &after, &r.CreatedAt); err != nil {
			return nil, store.NewStoreError("check-in record", "list", "scan row", err)
		}
		r.TriggerReason = reason.String
		r.Answers = json.RawMessage(answers)
		if err := json.Unmarshal(before, &r.Before); err != nil {
			return nil, store.NewStoreError("check-in record", "list", "decode profile_before", err)
		}
		if err := json.Unmarshal(after, &r.After); err != nil {
			return nil, store.NewStoreError("check-in record", "list", "decode profile_after", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
