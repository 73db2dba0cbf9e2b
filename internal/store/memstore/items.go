package memstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

type itemStore struct{ access }

func (s *itemStore) Create(ctx context.Context, item *domain.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.do(ctx, func(st *state) error {
		if _, ok := st.items[item.ID]; ok {
			return store.ErrDuplicate
		}
		st.items[item.ID] = item.Clone()
		return nil
	})
}

func (s *itemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	var out *domain.Item
	err := s.do(ctx, func(st *state) error {
		item, ok := st.items[id]
		if !ok {
			return store.ErrItemNotFound
		}
		out = item.Clone()
		return nil
	})
	return out, err
}

func (s *itemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.GetByID(ctx, id)
}

func (s *itemStore) UpdateSchedule(ctx context.Context, item *domain.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.do(ctx, func(st *state) error {
		current, ok := st.items[item.ID]
		if !ok {
			return store.ErrItemNotFound
		}
		updated := current.Clone()
		updated.LastReviewedAt = item.Clone().LastReviewedAt
		updated.NextReviewAt = item.Clone().NextReviewAt
		updated.IntervalDays = item.IntervalDays
		updated.EaseFactor = item.EaseFactor
		updated.ReviewCount = item.ReviewCount
		updated.LapseCount = item.LapseCount
		updated.UpdatedAt = item.UpdatedAt
		st.items[item.ID] = updated
		return nil
	})
}

func (s *itemStore) ListDueCandidates(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.Item, error) {
	var out []*domain.Item
	err := s.do(ctx, func(st *state) error {
		out = dueCandidates(st, userID, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *itemStore) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	var n int
	err := s.do(ctx, func(st *state) error {
		n = len(dueCandidates(st, userID, now))
		return nil
	})
	return n, err
}

// dueCandidates mirrors the SQL ordering: next review ascending with nulls
// last, then creation time, then id for determinism.
func dueCandidates(st *state, userID uuid.UUID, now time.Time) []*domain.Item {
	out := []*domain.Item{}
	for _, item := range st.items {
		if item.UserID == userID && item.IsDueCandidate(now) {
			out = append(out, item.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *domain.Item) int {
		switch {
		case a.NextReviewAt == nil && b.NextReviewAt != nil:
			return 1
		case a.NextReviewAt != nil && b.NextReviewAt == nil:
			return -1
		case a.NextReviewAt != nil && b.NextReviewAt != nil:
			if c := a.NextReviewAt.Compare(*b.NextReviewAt); c != 0 {
				return c
			}
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out
}
