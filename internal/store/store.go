package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects the database to open.
type Options struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string
	// DSN is a file path or sqlite URI for SQLite, a connection string for Postgres.
	DSN string
}

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string

	// recordMu serializes attempt numbering within the process. It is
	// shared by every AttemptRepo handed out by this store.
	recordMu sync.Mutex
}

// Open connects to the database described by opts and runs auto-migration.
func Open(ctx context.Context, opts Options) (*Store, error) {
	var (
		driverName string
		dsn        string
		dia        string
	)
	switch strings.ToLower(opts.Driver) {
	case "", DriverSQLite, "sqlite3":
		driverName, dsn, dia = "sqlite", sqliteDSN(opts.DSN), dialect.SQLite
	case DriverPostgres, "pgx":
		driverName, dsn, dia = "pgx", opts.DSN, dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	drv := entsql.OpenDB(dia, db)

	m, err := schema.NewMigrate(drv)
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, drv: drv, dialect: dia}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name of the open database.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// PassageRepo returns a PassageRepo backed by this store.
func (s *Store) PassageRepo() PassageRepo {
	return &passageRepo{db: s.db, dialect: s.dialect}
}

// AttemptRepo returns an AttemptRepo backed by this store.
func (s *Store) AttemptRepo() AttemptRepo {
	return &attemptRepo{db: s.db, dialect: s.dialect, mu: &s.recordMu}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, dialect: s.dialect}
}

// sqliteDSN turns a path into a sqlite URI carrying the connection pragmas.
// Pragmas go in the DSN so every pooled connection gets them.
// _txlock=immediate makes write transactions take the write lock up front.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "readcheck.db"
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	params := []string{
		"_pragma=busy_timeout(5000)",
		"_pragma=foreign_keys(1)",
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
		"_txlock=immediate",
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// DefaultDBPath resolves the database file path in priority order:
// 1. READCHECK_DB environment variable
// 2. $XDG_DATA_HOME/readcheck/readcheck.db
// 3. ~/.local/share/readcheck/readcheck.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("READCHECK_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "readcheck", "readcheck.db")
	return p, ensureDir(p)
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// rollback is deferred after BeginTx; it is a no-op once committed.
func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
