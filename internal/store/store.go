package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// schemaVersion is recorded in site_metadata after migration.
const schemaVersion = "1"

// timeLayout is fixed width so that stored timestamps sort lexically and their
// first ten characters are the calendar day.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("store: email already registered")
)

type Store struct {
	db     *sql.DB
	driver string
}

// New opens the database and applies the schema. An empty driver means sqlite.
func New(driver, dsn string) (*Store, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		// A single connection keeps ":memory:" databases shared and serializes writers.
		db.SetMaxOpenConns(1)
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func sqliteDSN(path string) string {
	pragmas := "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if path != ":memory:" {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + pragmas
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY REFERENCES users(id),
		full_name TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS user_roles (
		user_id TEXT NOT NULL REFERENCES users(id),
		role TEXT NOT NULL,
		PRIMARY KEY (user_id, role)
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		created_at TEXT NOT NULL,
		expires_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		user_id TEXT REFERENCES users(id),
		email TEXT NOT NULL DEFAULT '',
		assessment_type TEXT NOT NULL,
		answers TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		recommendations TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments (created_at);
	CREATE INDEX IF NOT EXISTS idx_assessments_user_id ON assessments (user_id);

	CREATE TABLE IF NOT EXISTS career_guides (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		target_audience TEXT NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		author_id TEXT NOT NULL REFERENCES users(id),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_career_guides_audience ON career_guides (target_audience, created_at);

	CREATE TABLE IF NOT EXISTS site_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.SetMetadata(context.Background(), "schema_version", schemaVersion)
}

// rebind rewrites "?" placeholders into the driver's native form.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", v, err)
	}
	return t, nil
}

// expectOne maps a zero-row update or delete to ErrNotFound.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
