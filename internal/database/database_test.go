package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "whatever")
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.Equal(t, DriverSQLite, db.Driver())
	require.NoError(t, Migrate(ctx, db))
	// Running twice must be harmless.
	require.NoError(t, Migrate(ctx, db))

	_, err = db.ExecContext(ctx, "INSERT INTO users (username, password, role) VALUES ($1, $2, $3)", "john_doe", "12345", "employee")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "INSERT INTO users (username, password, role) VALUES ($1, $2, $3)", "john_doe", "other", "employee")
	require.Error(t, err)
	require.True(t, IsUniqueViolation(err))
}

func TestMigrateUnknownDriver(t *testing.T) {
	db := NewMockDatabase()
	db.DriverName = "mysql"

	err := Migrate(context.Background(), db)
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestMigrateExecFailure(t *testing.T) {
	db := NewMockDatabase()
	db.ExecContextFn = func(ctx context.Context, query string, args ...any) (sql.Result, error) {
		return nil, errors.New("disk full")
	}

	err := Migrate(context.Background(), db)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
}

func TestIsUniqueViolation(t *testing.T) {
	data := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"postgres unique", &pq.Error{Code: "23505"}, true},
		{"postgres wrapped unique", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"postgres not null", &pq.Error{Code: "23502"}, false},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true},
		{"sqlite not null", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, false},
	}

	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			require.Equal(t, d.want, IsUniqueViolation(d.err))
		})
	}
}
