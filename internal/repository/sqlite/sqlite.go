// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// A job-application tracker is a single-user, single-server app. SQLite lives
// inside the binary as one file: no database server to install or manage.
// Use ":memory:" for throwaway databases in tests.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the server builds
// without CGo and cross-compiles like any other Go program.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements repository.CompanyRepository.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/applytrack.db" → file-based database (persistent)
//   - ":memory:"           → in-memory database (lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" is a brand-new empty database,
	// so the pool must never grow past one connection.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
//
// created_at is stored as Unix nanoseconds so that "newest first" ordering is
// a plain integer sort, independent of how the driver formats time values.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS companies (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			date       TEXT NOT NULL,
			rejected   INTEGER NOT NULL DEFAULT 0,
			comments   TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_companies_created_at ON companies(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating companies table: %w", err)
	}

	return nil
}
