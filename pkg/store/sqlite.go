package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "modernc.org/sqlite"
)

// Store is the primitive persistence contract the graph builder composes.
type Store interface {
	// Initialize ensures the seven-table schema exists. Idempotent and
	// strictly additive; safe to invoke on every startup.
	Initialize(ctx context.Context) error

	// Query runs a SELECT and returns the rows. The caller owns closing.
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// Insert runs a single INSERT and returns the new row id.
	Insert(ctx context.Context, query string, args ...any) (int64, error)

	// BatchInsert runs one statement for every tuple inside a single
	// transaction; either all tuples commit or none do.
	BatchInsert(ctx context.Context, query string, tuples [][]any) error

	// Stats returns per-table row counts.
	Stats(ctx context.Context) (*Stats, error)

	// Reset deletes all rows in dependency order. Test isolation only.
	Reset(ctx context.Context) error

	// Close releases the underlying database handle.
	Close() error
}

// Stats holds per-table row counts.
type Stats struct {
	Companies  int64 `json:"total_companies"`
	Divisions  int64 `json:"total_divisions"`
	Sources    int64 `json:"total_sources"`
	Facilities int64 `json:"total_facilities"`
	Events     int64 `json:"total_events"`
	Evidence   int64 `json:"total_evidence"`
	Jobs       int64 `json:"total_jobs"`
}

// SQLiteStore implements Store on an embedded SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Config holds connection pool options for the SQLite store.
type Config struct {
	// MaxOpenConns is the maximum number of open connections.
	// Default: 4 (WAL allows concurrent readers alongside one writer).
	MaxOpenConns int

	// BusyTimeout is the SQLite busy handler timeout.
	// Default: 10 seconds.
	BusyTimeout time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxOpenConns: 4,
		BusyTimeout:  10 * time.Second,
	}
}

// Open opens (creating if absent) the SQLite database at path with
// production pragmas applied: foreign_keys ON, WAL journaling, busy timeout.
func Open(path string) (*SQLiteStore, error) {
	return OpenWithConfig(path, nil)
}

// OpenWithConfig opens the database with custom pool options. A nil config
// uses defaults.
func OpenWithConfig(path string, cfg *Config) (*SQLiteStore, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// OpenMemory opens an in-memory store for tests. The pool is pinned to a
// single connection so every statement sees the same database.
func OpenMemory() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db, path: ":memory:"}, nil
}

// tables lists the schema in dependency order (parents first).
var tables = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS divisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		FOREIGN KEY(company_id) REFERENCES companies(id)
	)`,
	`CREATE TABLE IF NOT EXISTS sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT UNIQUE,
		title TEXT,
		fetched_at TEXT,
		mime_type TEXT,
		publish_date TEXT,
		source_type TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS facilities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		division_id INTEGER,
		name TEXT,
		city TEXT,
		state TEXT,
		country TEXT,
		normalized_name TEXT,
		FOREIGN KEY(division_id) REFERENCES divisions(id)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		facility_id INTEGER,
		event_type TEXT,
		event_date TEXT,
		status TEXT,
		expansion_type TEXT,
		confidence REAL,
		FOREIGN KEY(facility_id) REFERENCES facilities(id)
	)`,
	`CREATE TABLE IF NOT EXISTS evidence (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_id INTEGER,
		entity_type TEXT,
		entity_id INTEGER,
		text_snippet TEXT,
		char_start INTEGER,
		char_end INTEGER,
		confidence REAL,
		FOREIGN KEY(source_id) REFERENCES sources(id)
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		facility_id INTEGER,
		title TEXT,
		location TEXT,
		division_id INTEGER,
		is_factory_role INTEGER DEFAULT 0,
		source_id INTEGER,
		posted_date TEXT,
		description TEXT,
		FOREIGN KEY(facility_id) REFERENCES facilities(id),
		FOREIGN KEY(division_id) REFERENCES divisions(id),
		FOREIGN KEY(source_id) REFERENCES sources(id)
	)`,
}

var indices = []string{
	"CREATE INDEX IF NOT EXISTS idx_divisions_company ON divisions(company_id)",
	"CREATE INDEX IF NOT EXISTS idx_facilities_division ON facilities(division_id)",
	"CREATE INDEX IF NOT EXISTS idx_events_facility ON events(facility_id)",
	"CREATE INDEX IF NOT EXISTS idx_evidence_entity ON evidence(entity_type, entity_id)",
	"CREATE INDEX IF NOT EXISTS idx_jobs_posted ON jobs(posted_date)",
}

func (s *SQLiteStore) Initialize(ctx context.Context) error {
	for _, ddl := range tables {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, idx := range indices {
		if _, err := s.db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read insert id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) BatchInsert(ctx context.Context, query string, tuples [][]any) error {
	if len(tuples) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, tuple := range tuples {
		if _, err := stmt.ExecContext(ctx, tuple...); err != nil {
			return fmt.Errorf("failed to insert tuple %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	counts := []struct {
		table string
		dest  *int64
	}{
		{"companies", &stats.Companies},
		{"divisions", &stats.Divisions},
		{"sources", &stats.Sources},
		{"facilities", &stats.Facilities},
		{"events", &stats.Events},
		{"evidence", &stats.Evidence},
		{"jobs", &stats.Jobs},
	}

	for _, c := range counts {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table)
		if err := s.db.QueryRowContext(ctx, query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return stats, nil
}

// resetOrder deletes children before parents so foreign keys never block.
var resetOrder = []string{
	"evidence", "jobs", "events", "facilities", "divisions", "companies", "sources",
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	for _, table := range resetOrder {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// IsConstraintViolation reports whether err is a referential-integrity or
// uniqueness failure raised by SQLite.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		// Primary result code lives in the low byte of extended codes.
		return serr.Code()&0xff == 19 // SQLITE_CONSTRAINT
	}
	return strings.Contains(strings.ToLower(err.Error()), "constraint")
}
