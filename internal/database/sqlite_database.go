package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// SQLiteDatabase implements the Database interface for an embedded SQLite file or in-memory database.
type SQLiteDatabase struct {
	db *sql.DB
}

// NewSQLiteDatabase opens the SQLite database at dsn and verifies it is usable.
// SQLite allows a single writer, so the pool is capped at one connection.
func NewSQLiteDatabase(ctx context.Context, dsn string) (*SQLiteDatabase, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to check database connection: %w", err)
	}

	return &SQLiteDatabase{
		db: db,
	}, nil
}

func (sdb *SQLiteDatabase) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return sdb.db.ExecContext(ctx, query, args...)
}

func (sdb *SQLiteDatabase) QueryRowContext(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	return sdb.db.QueryRowContext(ctx, query, args...), nil
}

func (sdb *SQLiteDatabase) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return sdb.db.QueryContext(ctx, query, args...)
}

func (sdb *SQLiteDatabase) PingContext(ctx context.Context) error {
	return sdb.db.PingContext(ctx)
}

func (sdb *SQLiteDatabase) Driver() string {
	return DriverSQLite
}

func (sdb *SQLiteDatabase) Close() error {
	if err := sdb.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
