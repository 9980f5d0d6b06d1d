package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	// DriverPostgres selects the PostgreSQL backend.
	DriverPostgres = "postgres"
	// DriverSQLite selects the embedded SQLite backend.
	DriverSQLite = "sqlite"
)

// ErrUnsupportedDriver is returned when Open is called with an unknown driver name.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Database is the minimal set of operations the repositories need from a SQL backend.
// Implementations hand out pooled connections per statement, so no caller holds a
// connection across operations.
type Database interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) (*sql.Row, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PingContext(ctx context.Context) error
	Driver() string
	Close() error
}

// Open creates a Database for the given driver and connection string.
func Open(ctx context.Context, driver, dsn string) (Database, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresDatabase(ctx, dsn)
	case DriverSQLite:
		return NewSQLiteDatabase(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}
