// Package sqlite implements the cardvault store contract on SQLite.
// Functionally equivalent to the boltdb engine; useful where the data
// should stay inspectable with standard SQL tooling.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/iudanet/cardvault/internal/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Storage represents the SQLite storage implementation.
// Like the boltdb engine, the connection is opened lazily and memoized;
// concurrent opens converge on the same handle.
type Storage struct {
	path string
	now  func() time.Time

	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// New creates a storage bound to the SQLite file at dbPath.
// Use ":memory:" for an in-memory database (useful for testing).
func New(dbPath string) *Storage {
	return NewWithClock(dbPath, time.Now)
}

// NewWithClock is New with an injected clock, for deterministic tests.
func NewWithClock(dbPath string, now func() time.Time) *Storage {
	return &Storage{path: dbPath, now: now}
}

// Open idempotently opens the database and runs pending migrations.
// It also clears a previous Close, re-enabling the storage.
func (s *Storage) Open(ctx context.Context) error {
	s.mu.Lock()
	s.closed = false
	s.mu.Unlock()

	_, err := s.handle(ctx)
	return err
}

// Close closes the database connection. Subsequent operations return
// ErrStorageClosed until Open is called again.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	return db.Close()
}

// DB returns the underlying database connection for testing purposes.
func (s *Storage) DB(ctx context.Context) (*sql.DB, error) {
	return s.handle(ctx)
}

func (s *Storage) handle(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	if s.closed {
		return nil, storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite с WAL mode поддерживает несколько читателей, но только
	// одного писателя
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	// Запускаем миграции из embedded FS
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s.db = db
	return s.db, nil
}

func runMigrations(db *sql.DB) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetBaseFS(embedMigrations)

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}
	return nil
}

// tableErr maps "no such table" engine errors onto the distinct
// store-unavailable condition, so callers can tell a missing table from
// a failed transaction.
func tableErr(table string, err error) error {
	if err != nil && strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%s: %w", table, storage.ErrStoreUnavailable)
	}
	return err
}
