package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

const itemColumns = `id, user_id, title, body, image_url, state, last_reviewed_at, next_review_at,
	interval_days, ease_factor, review_count, lapse_count, created_at, updated_at`

// dueCandidatePredicate matches domain.Item.IsDueCandidate.
const dueCandidatePredicate = `
	user_id = $1
	AND state = 'active'
	AND (
		(last_reviewed_at IS NULL AND review_count = 0 AND created_at <= $2::timestamptz - INTERVAL '1 day')
		OR next_review_at <= $2
	)`

// PostgresItemStore implements store.ItemStore.
type PostgresItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresItemStore creates an item store over a connection or transaction.
// If logger is nil, a default logger will be used.
func NewPostgresItemStore(db store.DBTX, logger *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

var _ store.ItemStore = (*PostgresItemStore)(nil)

// Create implements store.ItemStore.Create.
func (s *PostgresItemStore) Create(ctx context.Context, item *domain.Item) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		item.ID, item.UserID, item.Title, item.Body, item.ImageURL, item.State,
		item.LastReviewedAt, item.NextReviewAt, item.IntervalDays, item.EaseFactor,
		item.ReviewCount, item.LapseCount, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return MapError(err, nil)
	}
	return nil
}

// GetByID implements store.ItemStore.GetByID.
func (s *PostgresItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.get(ctx, id, "")
}

// GetForUpdate implements store.ItemStore.GetForUpdate.
func (s *PostgresItemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.get(ctx, id, " FOR UPDATE")
}

func (s *PostgresItemStore) get(ctx context.Context, id uuid.UUID, suffix string) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`+suffix, id)
	item, err := scanItem(row)
	if err != nil {
		mapped := MapError(err, store.ErrItemNotFound)
		if mapped != store.ErrItemNotFound {
			log.Error("failed to get item",
				slog.String("error", err.Error()),
				slog.String("item_id", id.String()))
		}
		return nil, mapped
	}
	return item, nil
}

// UpdateSchedule implements store.ItemStore.UpdateSchedule.
func (s *PostgresItemStore) UpdateSchedule(ctx context.Context, item *domain.Item) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET last_reviewed_at = $1, next_review_at = $2, interval_days = $3, ease_factor = $4,
			review_count = $5, lapse_count = $6, updated_at = $7
		WHERE id = $8`,
		item.LastReviewedAt, item.NextReviewAt, item.IntervalDays, item.EaseFactor,
		item.ReviewCount, item.LapseCount, item.UpdatedAt, item.ID,
	)
	if err != nil {
		log.Error("failed to update item schedule",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return MapError(err, store.ErrItemNotFound)
	}
	return CheckRowsAffected(result, store.ErrItemNotFound)
}

// ListDueCandidates implements store.ItemStore.ListDueCandidates.
func (s *PostgresItemStore) ListDueCandidates(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE `+dueCandidatePredicate+`
		ORDER BY next_review_at ASC NULLS LAST, created_at ASC, id ASC
		LIMIT $3`,
		userID, now, limit,
	)
	if err != nil {
		log.Error("failed to query due items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err, nil)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	items := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			log.Error("failed to scan item row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("item", "list due", "scan row", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("item", "list due", "iterate rows", err)
	}

	log.Debug("found due items",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(items)))
	return items, nil
}

// CountDue implements store.ItemStore.CountDue.
func (s *PostgresItemStore) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE `+dueCandidatePredicate, userID, now).Scan(&n)
	if err != nil {
		return 0, MapError(err, nil)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		item                       domain.Item
		state                      string
		lastReviewed, nextReviewAt sql.NullTime
	)
	err := row.Scan(
		&item.ID, &item.UserID, &item.Title, &item.Body, &item.ImageURL, &state,
		&lastReviewed, &nextReviewAt, &item.IntervalDays, &item.EaseFactor,
		&item.ReviewCount, &item.LapseCount, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.State = domain.ItemState(state)
	item.LastReviewedAt = timePtr(lastReviewed)
	item.NextReviewAt = timePtr(nextReviewAt)
	return &item, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
