package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newItem(t *testing.T, userID uuid.UUID, createdAt time.Time) *domain.Item {
	t.Helper()
	item, err := domain.NewItem(userID, "title", "body", createdAt)
	require.NoError(t, err)
	return item
}

func TestItemsDueCandidatesOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := New()
	s := db.Stores()
	userID := uuid.New()

	fresh := newItem(t, userID, now.Add(-2*time.Hour)) // inside grace period
	unreviewed := newItem(t, userID, now.Add(-48*time.Hour))
	dueEarly := newItem(t, userID, now.Add(-72*time.Hour))
	dueEarly.ReviewCount, dueEarly.LastReviewedAt = 1, ptr(now.Add(-25*time.Hour))
	dueEarly.NextReviewAt = ptr(now.Add(-time.Hour))
	dueLate := newItem(t, userID, now.Add(-96*time.Hour))
	dueLate.ReviewCount, dueLate.LastReviewedAt = 1, ptr(now.Add(-24*time.Hour))
	dueLate.NextReviewAt = ptr(now.Add(-time.Minute))
	future := newItem(t, userID, now.Add(-96*time.Hour))
	future.ReviewCount, future.NextReviewAt = 1, ptr(now.Add(time.Hour))
	archived := newItem(t, userID, now.Add(-96*time.Hour))
	archived.State = domain.ItemStateDeleted
	other := newItem(t, uuid.New(), now.Add(-96*time.Hour))

	for _, item := range []*domain.Item{fresh, unreviewed, dueEarly, dueLate, future, archived, other} {
		require.NoError(t, s.Items.Create(ctx, item))
	}

	got, err := s.Items.ListDueCandidates(ctx, userID, now, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, dueEarly.ID, got[0].ID)
	assert.Equal(t, dueLate.ID, got[1].ID)
	assert.Equal(t, unreviewed.ID, got[2].ID, "nulls last")

	limited, err := s.Items.ListDueCandidates(ctx, userID, now, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	n, err := s.Items.CountDue(ctx, userID, now)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestItemsReturnCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New().Stores()
	item := newItem(t, uuid.New(), now)
	require.NoError(t, s.Items.Create(ctx, item))

	got, err := s.Items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	got.ReviewCount = 99

	again, err := s.Items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.ReviewCount)

	_, err = s.Items.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestRunInTxRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := New()
	userID := uuid.New()
	failure := errors.New("boom")

	err := db.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
		require.NoError(t, tx.Stats.Increment(ctx, userID, domain.RatingGood, now))
		_, err := tx.Activity.RecordEngagement(ctx, userID, uuid.New(), now)
		require.NoError(t, err)
		return failure
	})
	assert.ErrorIs(t, err, failure)

	_, err = db.Stores().Stats.Get(ctx, userID)
	assert.ErrorIs(t, err, store.ErrStatsNotFound)
	last, err := db.Stores().Activity.LastActiveDay(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestRunInTxCommits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := New()
	userID := uuid.New()

	require.NoError(t, db.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
		return tx.Stats.Increment(ctx, userID, domain.RatingHard, now)
	}))

	stats, err := db.Stores().Stats.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCompleted)
	assert.Equal(t, 1, stats.TotalHard)
}

func TestStatsConcurrentIncrements(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := New()
	userID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rating := domain.AllRatings[i%len(domain.AllRatings)]
			assert.NoError(t, db.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
				return tx.Stats.Increment(ctx, userID, rating, now)
			}))
		}(i)
	}
	wg.Wait()

	stats, err := db.Stores().Stats.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.TotalCompleted)
	assert.Equal(t, 50, stats.TotalAgain+stats.TotalHard+stats.TotalGood+stats.TotalEasy)
}

func TestRecordEngagementOncePerItemPerDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New().Stores()
	userID, itemA, itemB := uuid.New(), uuid.New(), uuid.New()

	first, err := s.Activity.RecordEngagement(ctx, userID, itemA, now)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := s.Activity.RecordEngagement(ctx, userID, itemA, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, again)

	_, err = s.Activity.RecordEngagement(ctx, userID, itemB, now)
	require.NoError(t, err)
	tomorrow, err := s.Activity.RecordEngagement(ctx, userID, itemA, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, tomorrow)

	days, err := s.Activity.ListSince(ctx, userID, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].ReviewsCompleted)
	assert.Equal(t, 2, days[1].ReviewsCompleted)

	last, err := s.Activity.LastActiveDay(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, domain.Day(now.Add(24*time.Hour)), *last)
}

func TestProfilesAndConfigs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New().Stores()
	userID := uuid.New()

	p := &domain.Profile{
		UserID:              userID,
		LearningStyle:       domain.LearningStyleMixed,
		SkillLevel:          domain.SkillLevelBeginner,
		PrimaryGoal:         domain.PrimaryGoalLearning,
		PreferredPace:       domain.PaceModerate,
		IntervalMultiplier:  1.0,
		OnboardingCompleted: true,
	}
	require.NoError(t, s.Profiles.Create(ctx, p))
	assert.ErrorIs(t, s.Profiles.Create(ctx, p), store.ErrProfileExists)

	ids, err := s.Profiles.ListOnboardedUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userID}, ids)

	p.IntervalMultiplier = 5
	assert.ErrorIs(t, s.Profiles.Update(ctx, p), store.ErrInvalidEntity)

	_, err = s.Configs.Get(ctx, userID)
	assert.ErrorIs(t, err, store.ErrReviewConfigNotFound)
}

func TestListRecentNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New().Stores()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Adaptations.Create(ctx, &domain.AdaptationRecord{
			ID: uuid.New(), UserID: userID, TotalReviews: i, CreatedAt: now.AddDate(0, 0, i),
		}))
	}
	recs, err := s.Adaptations.ListRecent(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[0].TotalReviews)
	assert.Equal(t, 1, recs[1].TotalReviews)
}

func ptr(t time.Time) *time.Time { return &t }
