// Package lock provides named, expiring mutual-exclusion locks used to keep
// batch jobs from running twice at the same time.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotAcquired is returned by TryLock when another holder owns the key.
var ErrNotAcquired = errors.New("lock held by another owner")

// Locker hands out locks keyed by name.
type Locker interface {
	// TryLock acquires key for ttl without waiting. It returns ErrNotAcquired
	// when the key is already held.
	TryLock(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Lock is a held lock. Release is idempotent and never releases a lock that
// has since expired and been taken by someone else.
type Lock interface {
	Release(ctx context.Context) error
}

func newToken() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
