package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/store"
)

// NewStores builds every store over db, which may be a *sql.DB or *sql.Tx.
func NewStores(db store.DBTX, logger *slog.Logger) *store.Stores {
	return &store.Stores{
		Items:       NewPostgresItemStore(db, logger),
		Profiles:    NewPostgresProfileStore(db, logger),
		Configs:     NewPostgresReviewConfigStore(db, logger),
		Reminders:   NewPostgresReminderStore(db),
		Stats:       NewPostgresStatsStore(db, logger),
		Activity:    NewPostgresActivityStore(db, logger),
		Adaptations: NewPostgresAdaptationStore(db),
		CheckIns:    NewPostgresCheckInStore(db),
	}
}

// Transactor implements store.Transactor with database transactions.
type Transactor struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTransactor creates a Transactor for db.
func NewTransactor(db *sql.DB, logger *slog.Logger) *Transactor {
	if db == nil {
		panic("db cannot be nil")
	}
	return &Transactor{db: db, logger: logger}
}

var _ store.Transactor = (*Transactor)(nil)

// RunInTx implements store.Transactor.
func (t *Transactor) RunInTx(ctx context.Context, fn store.TxStoresFn) error {
	return store.RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, NewStores(tx, t.logger))
	})
}
