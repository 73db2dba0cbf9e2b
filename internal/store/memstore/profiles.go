package memstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

type profileStore struct{ access }

func (s *profileStore) Create(ctx context.Context, p *domain.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.do(ctx, func(st *state) error {
		if _, ok := st.profiles[p.UserID]; ok {
			return store.ErrProfileExists
		}
		st.profiles[p.UserID] = p.Clone()
		return nil
	})
}

func (s *profileStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var out *domain.Profile
	err := s.do(ctx, func(st *state) error {
		p, ok := st.profiles[userID]
		if !ok {
			return store.ErrProfileNotFound
		}
		out = p.Clone()
		return nil
	})
	return out, err
}

func (s *profileStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return s.Get(ctx, userID)
}

func (s *profileStore) Update(ctx context.Context, p *domain.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.do(ctx, func(st *state) error {
		if _, ok := st.profiles[p.UserID]; !ok {
			return store.ErrProfileNotFound
		}
		st.profiles[p.UserID] = p.Clone()
		return nil
	})
}

func (s *profileStore) ListOnboardedUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.do(ctx, func(st *state) error {
		for id, p := range st.profiles {
			if p.OnboardingCompleted {
				ids = append(ids, id)
			}
		}
		return nil
	})
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })
	return ids, err
}

type configStore struct{ access }

func (s *configStore) Create(ctx context.Context, c *domain.ReviewConfig) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.do(ctx, func(st *state) error {
		if _, ok := st.configs[c.UserID]; ok {
			return store.ErrDuplicate
		}
		st.configs[c.UserID] = c.Clone()
		return nil
	})
}

func (s *configStore) Get(ctx context.Context, userID uuid.UUID) (*domain.ReviewConfig, error) {
	var out *domain.ReviewConfig
	err := s.do(ctx, func(st *state) error {
		c, ok := st.configs[userID]
		if !ok {
			return store.ErrReviewConfigNotFound
		}
		out = c.Clone()
		return nil
	})
	return out, err
}

func (s *configStore) Update(ctx context.Context, c *domain.ReviewConfig) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.do(ctx, func(st *state) error {
		if _, ok := st.configs[c.UserID]; !ok {
			return store.ErrReviewConfigNotFound
		}
		st.configs[c.UserID] = c.Clone()
		return nil
	})
}

type reminderStore struct{ access }

func (s *reminderStore) Create(ctx context.Context, r *domain.ReminderIntention) error {
	return s.do(ctx, func(st *state) error {
		cp := *r
		st.reminders = append(st.reminders, &cp)
		return nil
	})
}

func (s *reminderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReminderIntention, error) {
	out := []*domain.ReminderIntention{}
	err := s.do(ctx, func(st *state) error {
		for _, r := range st.reminders {
			if r.UserID == userID {
				cp := *r
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}
