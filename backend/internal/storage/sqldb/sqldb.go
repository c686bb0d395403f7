// Package sqldb stores record collections in a single SQL table, on either
// an embedded SQLite file (modernc.org/sqlite, no cgo) or Postgres.
//
// Records are kept as JSON bodies keyed by (collection, id). Updates run in
// a transaction, so unlike the file store concurrent writers from several
// processes do not lose each other's changes.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ptchurch/site/backend/internal/service"
	"github.com/ptchurch/site/shared/logger"
	"github.com/ptchurch/site/shared/storage/pg"

	_ "modernc.org/sqlite" // Registers the "sqlite" driver
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// SQLiteFile is the database file name inside the data directory.
	SQLiteFile = "site.db"
)

type dialect struct {
	driver     string
	numbered   bool // $1 placeholders instead of ?
	seqColumn  string
	bodyType   string
	lockSuffix string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		driver:    DriverSQLite,
		seqColumn: "seq INTEGER PRIMARY KEY AUTOINCREMENT",
		bodyType:  "TEXT",
	},
	DriverPostgres: {
		driver:     DriverPostgres,
		numbered:   true,
		seqColumn:  "seq BIGSERIAL PRIMARY KEY",
		bodyType:   "JSONB",
		lockSuffix: " FOR UPDATE",
	},
}

// rebind rewrites ? placeholders for drivers that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type Storage struct {
	db      *sql.DB
	dialect dialect
}

var _ service.Pinger = (*Storage)(nil)

// OpenSQLite opens (creating if needed) <dataDir>/site.db.
func OpenSQLite(ctx context.Context, dataDir string) (*Storage, error) {
	dsn := "file:" + filepath.Join(filepath.Clean(dataDir), SQLiteFile) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	return Open(ctx, DriverSQLite, dsn)
}

// OpenPostgres connects to the database at url (a lib/pq connection string).
func OpenPostgres(ctx context.Context, url string) (*Storage, error) {
	return Open(ctx, DriverPostgres, url)
}

// Open connects with the named driver and creates the records table.
func Open(ctx context.Context, driver, dsn string) (*Storage, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	connCfg := pg.DefaultConnectionConfig()
	if driver == DriverSQLite {
		connCfg = pg.SingleWriterConnectionConfig()
	}
	logger.Log.Info("connecting to record database", "component", "sqldb", "driver", driver)
	db, err := pg.Connect(ctx, driver, dsn, connCfg)
	if err != nil {
		return nil, err
	}

	s := &Storage{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) migrate(ctx context.Context) error {
	table := pg.QuoteIdentifier("records")
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			%s,
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			body %s NOT NULL,
			UNIQUE (collection, id)
		)`, table, s.dialect.seqColumn, s.dialect.bodyType),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS records_collection_created ON %s (collection, created_at)`, table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate records table: %w", err)
		}
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}
