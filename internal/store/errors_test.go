package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFamilies(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrItemNotFound, ErrProfileNotFound, ErrReviewConfigNotFound, ErrStatsNotFound} {
		assert.True(t, IsNotFoundError(err), err.Error())
		assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", err)))
		assert.False(t, IsDuplicateError(err))
	}

	assert.True(t, IsDuplicateError(ErrProfileExists))
	assert.False(t, IsNotFoundError(ErrProfileExists))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	err := NewStoreError("item", "update", "schedule write failed", ErrItemNotFound)
	assert.Equal(t, "update operation on item failed: schedule write failed: entity not found: item", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	var se *StoreError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &se))
	assert.Equal(t, "item", se.Entity)

	bare := NewStoreError("profile", "create", "invalid", nil)
	assert.Equal(t, "create operation on profile failed: invalid", bare.Error())
}
