package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		notFound error
		want     error
	}{
		{"no rows generic", sql.ErrNoRows, nil, store.ErrNotFound},
		{"no rows specific", sql.ErrNoRows, store.ErrItemNotFound, store.ErrItemNotFound},
		{"unique", &pgconn.PgError{Code: uniqueViolationCode}, nil, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "fk"}, nil, store.ErrInvalidEntity},
		{"check", &pgconn.PgError{Code: checkViolationCode, ConstraintName: "ck"}, nil, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "title"}, nil, store.ErrInvalidEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tc.err, tc.notFound), tc.want)
		})
	}

	assert.NoError(t, MapError(nil, nil))
	other := errors.New("connection reset")
	assert.Equal(t, other, MapError(other, nil))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()
	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrItemNotFound))
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrItemNotFound), store.ErrItemNotFound)
	assert.Error(t, CheckRowsAffected(sqlmock.NewErrorResult(errors.New("x")), store.ErrItemNotFound))
	assert.Error(t, CheckRowsAffected(nil, store.ErrItemNotFound))
}

func pgUniqueViolation() error {
	return &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "profiles_pkey"}
}
