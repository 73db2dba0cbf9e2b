package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

type statsStore struct{ access }

func (s *statsStore) Get(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error) {
	var out *domain.ReviewStats
	err := s.do(ctx, func(st *state) error {
		stats, ok := st.stats[userID]
		if !ok {
			return store.ErrStatsNotFound
		}
		cp := *stats
		out = &cp
		return nil
	})
	return out, err
}

func (s *statsStore) Increment(ctx context.Context, userID uuid.UUID, rating domain.ReviewRating, at time.Time) error {
	if !rating.Valid() {
		return domain.ErrInvalidRating
	}
	return s.do(ctx, func(st *state) error {
		next := domain.ReviewStats{UserID: userID}
		if current, ok := st.stats[userID]; ok {
			next = *current
		}
		next.Record(rating)
		next.UpdatedAt = at.UTC()
		st.stats[userID] = &next
		return nil
	})
}

type activityStore struct{ access }

func (s *activityStore) RecordEngagement(ctx context.Context, userID, itemID uuid.UUID, at time.Time) (bool, error) {
	var recorded bool
	err := s.do(ctx, func(st *state) error {
		day := domain.Day(at)
		key := engagementKey{userID: userID, itemID: itemID, day: day}
		if _, seen := st.engagements[key]; seen {
			return nil
		}
		st.engagements[key] = struct{}{}

		next := domain.DailyActivity{UserID: userID, Day: day}
		if current, ok := st.activity[activityKey{userID, day}]; ok {
			next = *current
		}
		next.ReviewsCompleted++
		st.activity[activityKey{userID, day}] = &next
		recorded = true
		return nil
	})
	return recorded, err
}

func (s *activityStore) LastActiveDay(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	var last *time.Time
	err := s.do(ctx, func(st *state) error {
		for key := range st.activity {
			if key.userID == userID && (last == nil || key.day.After(*last)) {
				day := key.day
				last = &day
			}
		}
		return nil
	})
	return last, err
}

func (s *activityStore) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*domain.DailyActivity, error) {
	out := []*domain.DailyActivity{}
	from := domain.Day(since)
	err := s.do(ctx, func(st *state) error {
		for key, a := range st.activity {
			if key.userID == userID && !key.day.Before(from) {
				cp := *a
				out = append(out, &cp)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.DailyActivity) int { return b.Day.Compare(a.Day) })
	return out, err
}

type adaptationStore struct{ access }

func (s *adaptationStore) Create(ctx context.Context, r *domain.AdaptationRecord) error {
	return s.do(ctx, func(st *state) error {
		cp := *r
		st.adaptations = append(st.adaptations, &cp)
		return nil
	})
}

func (s *adaptationStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AdaptationRecord, error) {
	var out []*domain.AdaptationRecord
	err := s.do(ctx, func(st *state) error {
		for i := len(st.adaptations) - 1; i >= 0; i-- {
			if r := st.adaptations[i]; r.UserID == userID {
				cp := *r
				out = append(out, &cp)
			}
		}
		return nil
	})
	return truncate(out, limit), err
}

type checkInStore struct{ access }

func (s *checkInStore) Create(ctx context.Context, r *domain.CheckInRecord) error {
	return s.do(ctx, func(st *state) error {
		cp := *r
		cp.Answers = slices.Clone(r.Answers)
		st.checkIns = append(st.checkIns, &cp)
		return nil
	})
}

func (s *checkInStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CheckInRecord, error) {
	var out []*domain.CheckInRecord
	err := s.do(ctx, func(st *state) error {
		for i := len(st.checkIns) - 1; i >= 0; i-- {
			if r := st.checkIns[i]; r.UserID == userID {
				cp := *r
				cp.Answers = slices.Clone(r.Answers)
				out = append(out, &cp)
			}
		}
		return nil
	})
	return truncate(out, limit), err
}

func truncate[T any](s []T, limit int) []T {
	if s == nil {
		s = []T{}
	}
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
