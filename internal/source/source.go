// Package source is the read side of the loader: a database/sql handle on the
// operational store plus the ordered extraction queries for each entity.
//
// Supported kinds are mysql, sqlserver, sqlite and postgres. The handle is
// opened explicitly with Open and must be closed by the caller; nothing in
// this package is global.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	// database/sql drivers for every supported kind.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// Source kinds.
const (
	KindMySQL     = "mysql"
	KindSQLServer = "sqlserver"
	KindSQLite    = "sqlite"
	KindPostgres  = "postgres"
)

// driverNames maps a kind to its registered database/sql driver.
var driverNames = map[string]string{
	KindMySQL:     "mysql",
	KindSQLServer: "sqlserver",
	KindSQLite:    "sqlite",
	KindPostgres:  "pgx",
}

// Kinds returns the supported source kinds, sorted.
func Kinds() []string {
	out := make([]string, 0, len(driverNames))
	for k := range driverNames {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Config selects and addresses the operational store.
type Config struct {
	Kind string
	DSN  string
}

// Source is an open handle on the operational store.
type Source struct {
	db      *sql.DB
	kind    string
	dialect Dialect
}

// openDB is a test seam.
var openDB = sql.Open

// Open connects to the store described by cfg and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Source, error) {
	driver, ok := driverNames[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("unsupported source.kind=%s", cfg.Kind)
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("source %s: empty DSN", cfg.Kind)
	}
	db, err := openDB(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("source %s: open: %w", cfg.Kind, err)
	}
	if cfg.Kind == KindSQLite {
		// modernc connections do not share a temp schema; one is plenty for
		// sequential reads.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("source %s: ping: %w", cfg.Kind, err)
	}
	return &Source{db: db, kind: cfg.Kind, dialect: DialectFor(cfg.Kind)}, nil
}

// Kind reports the source kind.
func (s *Source) Kind() string { return s.kind }

// Dialect reports the identifier quoting rules of the source.
func (s *Source) Dialect() Dialect { return s.dialect }

// Stream runs q and returns the open result set. Rows arrive in the order
// defined by the query; the caller must close them.
func (s *Source) Stream(ctx context.Context, q Query) (*sql.Rows, error) {
	rows, err := s.db.QueryContext(ctx, q.SQL(s.dialect))
	if err != nil {
		return nil, fmt.Errorf("source: query %s: %w", q.Name, err)
	}
	return rows, nil
}

// Columns returns the live column names of table.
func (s *Source) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.dialect.Quote(table)+" WHERE 1=0")
	if err != nil {
		return nil, fmt.Errorf("source: columns of %s: %w", table, err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("source: columns of %s: %w", table, err)
	}
	return cols, nil
}

// Close releases the underlying connection pool.
func (s *Source) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
