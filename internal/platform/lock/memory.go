package lock

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Locker. It is used when no Redis URL is
// configured and in tests.
type Memory struct {
	mu    sync.Mutex
	held  map[string]memoryEntry
	nowFn func() time.Time
}

type memoryEntry struct {
	token   string
	expires time.Time
}

// NewMemory creates an empty in-process locker.
func NewMemory() *Memory {
	return &Memory{held: make(map[string]memoryEntry), nowFn: time.Now}
}

var _ Locker = (*Memory)(nil)

// TryLock implements Locker.
func (m *Memory) TryLock(_ context.Context, key string, ttl time.Duration) (Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFn()
	if e, ok := m.held[key]; ok && now.Before(e.expires) {
		return nil, ErrNotAcquired
	}
	token := newToken()
	m.held[key] = memoryEntry{token: token, expires: now.Add(ttl)}
	return &memoryLock{m: m, key: key, token: token}, nil
}

type memoryLock struct {
	m     *Memory
	key   string
	token string
}

func (l *memoryLock) Release(context.Context) error {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	if e, ok := l.m.held[l.key]; ok && e.token == l.token {
		delete(l.m.held, l.key)
	}
	return nil
}
