// Package sqlstore implements the repository interfaces on database/sql.
//
// Two engines are supported: SQLite through modernc.org/sqlite (pure Go, no
// CGo, the default) and PostgreSQL through pgx's database/sql driver. Queries
// are written once with "?" placeholders and rebound for Postgres.
//
// The pattern for every mutation is the same:
//
//	s.withTx(ctx, "creating user", func(ctx context.Context, tx dbtx) error {
//	    // checks and writes through tx only
//	})
//
// withTx commits on success and rolls back on any error or panic, so no
// partial row is ever left behind. Reads run straight on the pool.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"

	// Both drivers register themselves with database/sql at init time:
	// "sqlite" for modernc.org/sqlite and "pgx" for pgx's stdlib adapter.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Dialect selects the SQL flavour and driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) gooseDialect() database.Dialect {
	if d == DialectPostgres {
		return database.DialectPostgres
	}
	return database.DialectSQLite3
}

// Options configures Open.
type Options struct {
	Driver       Dialect
	DSN          string // file path or ":memory:" for SQLite, URL for Postgres
	MaxOpenConns int    // ignored for SQLite, which always uses one
}

// Store holds the connection pool and implements every repository interface.
type Store struct {
	conn    *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Open connects, verifies the connection and applies pending migrations.
//
// SQLite gets a single connection. A ":memory:" database lives inside one
// connection, and SQLite serialises writers anyway, so a larger pool would
// only trade SQLITE_BUSY errors for nothing.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	switch opts.Driver {
	case DialectSQLite, DialectPostgres:
	default:
		return nil, fmt.Errorf("sqlstore: unknown driver %q", opts.Driver)
	}

	dsn := opts.DSN
	if opts.Driver == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	conn, err := sql.Open(opts.Driver.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening database: %w", err)
	}

	if opts.Driver == DialectSQLite {
		conn.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: pinging database: %w", err)
	}

	s := Wrap(conn, opts.Driver, logger)
	if err := s.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

// sqlitePragmas are applied by the driver to every connection it opens, so
// a connection replaced by the pool gets them too. WAL lets readers proceed
// while a write is in progress; foreign keys are off by default in SQLite.
var sqlitePragmas = []string{"foreign_keys(1)", "journal_mode(WAL)", "busy_timeout(5000)"}

// sqliteDSN appends sqlitePragmas to dsn as modernc.org/sqlite _pragma
// query parameters.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	var b strings.Builder
	b.WriteString(dsn)
	for _, p := range sqlitePragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// Wrap builds a Store on an existing pool without touching the schema.
func Wrap(conn *sql.DB, dialect Dialect, logger *slog.Logger) *Store {
	return &Store{
		conn:    conn,
		dialect: dialect,
		logger:  logger.With("component", "sqlstore"),
	}
}

// Migrate applies every embedded migration not yet recorded in the
// goose version table.
func (s *Store) Migrate(ctx context.Context) error {
	dir, err := fs.Sub(migrationsFS, "migrations/"+string(s.dialect))
	if err != nil {
		return fmt.Errorf("sqlstore: locating migrations: %w", err)
	}

	provider, err := goose.NewProvider(s.dialect.gooseDialect(), s.conn, dir)
	if err != nil {
		return fmt.Errorf("sqlstore: preparing migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: running migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Info("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}

	return nil
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}
