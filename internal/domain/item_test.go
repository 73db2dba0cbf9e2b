package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	item, err := NewItem(userID, "Met Sam", "at the climbing gym", now)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, userID, item.UserID)
	assert.Equal(t, ItemStateActive, item.State)
	assert.Equal(t, MinIntervalDays, item.IntervalDays)
	assert.Equal(t, DefaultEaseFactor, item.EaseFactor)
	assert.Nil(t, item.LastReviewedAt)
	assert.Nil(t, item.NextReviewAt)
	assert.True(t, item.CreatedAt.Equal(now))

	_, err = NewItem(uuid.Nil, "x", "y", now)
	assert.ErrorIs(t, err, ErrItemUserIDEmpty)
}

func TestItemValidate(t *testing.T) {
	t.Parallel()
	valid := func() *Item {
		return &Item{
			ID:           uuid.New(),
			UserID:       uuid.New(),
			State:        ItemStateActive,
			IntervalDays: 1,
			EaseFactor:   2.5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Item)
		wantErr error
	}{
		{"valid", func(*Item) {}, nil},
		{"missing id", func(i *Item) { i.ID = uuid.Nil }, ErrItemIDEmpty},
		{"missing user", func(i *Item) { i.UserID = uuid.Nil }, ErrItemUserIDEmpty},
		{"unknown state", func(i *Item) { i.State = "archived" }, ErrInvalidItemState},
		{"zero interval", func(i *Item) { i.IntervalDays = 0 }, ErrInvalidInterval},
		{"ease below floor", func(i *Item) { i.EaseFactor = 1.29 }, ErrInvalidEaseFactor},
		{"negative lapses", func(i *Item) { i.LapseCount = -1 }, ErrInvalidCounter},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := valid()
			tc.mutate(item)
			err := item.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestItemIsDueCandidate(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		item Item
		want bool
	}{
		{
			name: "never reviewed and older than a day",
			item: Item{State: ItemStateActive, CreatedAt: now.Add(-25 * time.Hour)},
			want: true,
		},
		{
			name: "never reviewed and exactly a day old",
			item: Item{State: ItemStateActive, CreatedAt: now.Add(-24 * time.Hour)},
			want: true,
		},
		{
			name: "never reviewed and fresh",
			item: Item{State: ItemStateActive, CreatedAt: now.Add(-2 * time.Hour)},
			want: false,
		},
		{
			name: "scheduled in the past",
			item: Item{State: ItemStateActive, CreatedAt: now.Add(-48 * time.Hour), LastReviewedAt: &past, NextReviewAt: &past, ReviewCount: 1},
			want: true,
		},
		{
			name: "scheduled exactly now",
			item: Item{State: ItemStateActive, CreatedAt: now.Add(-48 * time.Hour), LastReviewedAt: &past, NextReviewAt: &now, ReviewCount: 1},
			want: true,
		},
		{
			name: "scheduled in the future",
			item: Item{State: ItemStateActive, CreatedAt: now.Add(-48 * time.Hour), LastReviewedAt: &past, NextReviewAt: &future, ReviewCount: 1},
			want: false,
		},
		{
			name: "draft is never due",
			item: Item{State: ItemStateDraft, CreatedAt: now.Add(-48 * time.Hour), NextReviewAt: &past},
			want: false,
		},
		{
			name: "deleted is never due",
			item: Item{State: ItemStateDeleted, CreatedAt: now.Add(-48 * time.Hour)},
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.item.IsDueCandidate(now))
		})
	}
}

func TestItemContentLengthCountsCharacters(t *testing.T) {
	t.Parallel()
	item := Item{Title: "café", Body: "日本"}
	assert.Equal(t, 6, item.ContentLength())
	assert.False(t, item.HasImage())
	item.ImageURL = "https://img.example/1.png"
	assert.True(t, item.HasImage())
}

func TestItemCloneIsDeep(t *testing.T) {
	t.Parallel()
	ts := time.Now()
	orig := &Item{LastReviewedAt: &ts, NextReviewAt: &ts}
	c := orig.Clone()
	*c.NextReviewAt = ts.Add(time.Hour)
	assert.True(t, orig.NextReviewAt.Equal(ts))
}
