// Package memstore is an in-memory implementation of the store ports. A
// transaction holds a single lock for its whole duration and restores a
// snapshot on failure, so it gives the same atomicity the services rely on
// from PostgreSQL.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

type engagementKey struct {
	userID uuid.UUID
	itemID uuid.UUID
	day    time.Time
}

type activityKey struct {
	userID uuid.UUID
	day    time.Time
}

// state holds clones only, so a shallow copy is a valid snapshot.
type state struct {
	items       map[uuid.UUID]*domain.Item
	profiles    map[uuid.UUID]*domain.Profile
	configs     map[uuid.UUID]*domain.ReviewConfig
	stats       map[uuid.UUID]*domain.ReviewStats
	engagements map[engagementKey]struct{}
	activity    map[activityKey]*domain.DailyActivity
	reminders   []*domain.ReminderIntention
	adaptations []*domain.AdaptationRecord
	checkIns    []*domain.CheckInRecord
}

func newState() *state {
	return &state{
		items:       make(map[uuid.UUID]*domain.Item),
		profiles:    make(map[uuid.UUID]*domain.Profile),
		configs:     make(map[uuid.UUID]*domain.ReviewConfig),
		stats:       make(map[uuid.UUID]*domain.ReviewStats),
		engagements: make(map[engagementKey]struct{}),
		activity:    make(map[activityKey]*domain.DailyActivity),
	}
}

func (s *state) snapshot() *state {
	return &state{
		items:       maps.Clone(s.items),
		profiles:    maps.Clone(s.profiles),
		configs:     maps.Clone(s.configs),
		stats:       maps.Clone(s.stats),
		engagements: maps.Clone(s.engagements),
		activity:    maps.Clone(s.activity),
		reminders:   slices.Clone(s.reminders),
		adaptations: slices.Clone(s.adaptations),
		checkIns:    slices.Clone(s.checkIns),
	}
}

// DB is the in-memory database.
type DB struct {
	mu sync.Mutex
	st *state
}

// New returns an empty database.
func New() *DB {
	return &DB{st: newState()}
}

var _ store.Transactor = (*DB)(nil)

// Stores returns stores that lock per call. They must not be used inside
// RunInTx; use the transaction's stores there.
func (db *DB) Stores() *store.Stores {
	return db.stores(false)
}

func (db *DB) stores(inTx bool) *store.Stores {
	a := access{db: db, inTx: inTx}
	return &store.Stores{
		Items:       &itemStore{a},
		Profiles:    &profileStore{a},
		Configs:     &configStore{a},
		Reminders:   &reminderStore{a},
		Stats:       &statsStore{a},
		Activity:    &activityStore{a},
		Adaptations: &adaptationStore{a},
		CheckIns:    &checkInStore{a},
	}
}

// RunInTx implements store.Transactor.
func (db *DB) RunInTx(ctx context.Context, fn store.TxStoresFn) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	saved := db.st.snapshot()
	defer func() {
		if p := recover(); p != nil {
			db.st = saved
			panic(p)
		}
	}()

	if err := fn(ctx, db.stores(true)); err != nil {
		db.st = saved
		return err
	}
	return nil
}

type access struct {
	db   *DB
	inTx bool
}

func (a access) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !a.inTx {
		a.db.mu.Lock()
		defer a.db.mu.Unlock()
	}
	return fn(a.db.st)
}
