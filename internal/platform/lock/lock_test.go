package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTryLock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	first, err := m.TryLock(ctx, "adaptation", time.Minute)
	require.NoError(t, err)

	_, err = m.TryLock(ctx, "adaptation", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	_, err = m.TryLock(ctx, "other", time.Minute)
	assert.NoError(t, err, "keys are independent")

	require.NoError(t, first.Release(ctx))
	again, err := m.TryLock(ctx, "adaptation", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, again.Release(ctx))
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.nowFn = func() time.Time { return now }

	stale, err := m.TryLock(ctx, "job", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := m.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err, "expired lock can be taken over")

	// The stale holder must not release the new owner's lock.
	require.NoError(t, stale.Release(ctx))
	_, err = m.TryLock(ctx, "job", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, fresh.Release(ctx))
}

func TestRedisTryLock(t *testing.T) {
	url := os.Getenv("RECALL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("RECALL_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	r, err := DialRedis(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	key := "test-" + newToken()
	l, err := r.TryLock(ctx, key, 10*time.Second)
	require.NoError(t, err)

	_, err = r.TryLock(ctx, key, 10*time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, l.Release(ctx))
	l2, err := r.TryLock(ctx, key, 10*time.Second)
	require.NoError(t, err)
	require.NoError(t, l2.Release(ctx))
}
