// Package testdb gives integration tests a migrated PostgreSQL database.
// Tests using it are skipped unless RECALL_TEST_DATABASE_URL is set.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// EnvURL names the variable holding the test database URL.
const EnvURL = "RECALL_TEST_DATABASE_URL"

// Timeout bounds setup operations.
const Timeout = 10 * time.Second

// URL returns the configured test database URL, or "".
func URL() string {
	return os.Getenv(EnvURL)
}

// Open connects to the test database and applies every migration. The
// connection is closed when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := URL()
	if url == "" {
		t.Skipf("%s not set; skipping integration test", EnvURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 5, MaxIdleConns: 2}, nil)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db, "up", nil), "failed to migrate test database")
	return db
}

// WithTx runs fn inside a transaction that is always rolled back, keeping
// tests isolated from each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
