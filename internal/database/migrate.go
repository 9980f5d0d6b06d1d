package database

import (
	"context"
	"fmt"
)

var usersTableDDL = map[string]string{
	DriverPostgres: `
		CREATE TABLE IF NOT EXISTS users (
			id         SERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			username   TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			role       TEXT NOT NULL
		)`,
	DriverSQLite: `
		CREATE TABLE IF NOT EXISTS users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			username   TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			role       TEXT NOT NULL
		)`,
}

// Migrate creates the users table when it does not exist yet.
func Migrate(ctx context.Context, db Database) error {
	ddl, ok := usersTableDDL[db.Driver()]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, db.Driver())
	}

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	return nil
}
