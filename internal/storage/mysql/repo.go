// Package mysql implements a MySQL-backed storage.Warehouse using
// go-sql-driver/mysql. MySQL has no RETURNING clause, so each upsert is an
// INSERT ... ON DUPLICATE KEY UPDATE followed by a key lookup in the same
// transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"salesdw/internal/storage"
)

// maxParams is the MySQL prepared statement placeholder limit.
const maxParams = 65535

// Config holds MySQL repository configuration.
type Config struct {
	DSN      string // go-sql-driver DSN, e.g. "user:pass@tcp(host:3306)/db"
	MaxConns int
}

// Repository is a MySQL-backed implementation of storage.Warehouse.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { _ = db.Close() }
	return &Repository{db: db}, close, nil
}

// UpsertReturning implements storage.Warehouse.
func (r *Repository) UpsertReturning(ctx context.Context, spec storage.UpsertSpec, rows [][]any) ([]storage.KeyPair, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := spec.CheckRows(rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	keyIdx := spec.KeyIndex()
	out := make([]storage.KeyPair, 0, len(rows))
	for _, chunk := range storage.Chunks(rows, len(spec.Columns), maxParams, 0) {
		keys := make([]any, len(chunk))
		args := make([]any, 0, len(chunk)*len(spec.Columns))
		for i, row := range chunk {
			for _, v := range row {
				args = append(args, bind(v))
			}
			keys[i] = bind(row[keyIdx])
		}

		before, err := lookup(ctx, tx, spec, keys)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, buildUpsertSQL(spec, len(chunk)), args...); err != nil {
			return nil, fmt.Errorf("upsert %s: %w", spec.Table, err)
		}
		after, err := lookup(ctx, tx, spec, keys)
		if err != nil {
			return nil, err
		}
		for key, id := range after {
			_, existed := before[key]
			out = append(out, storage.KeyPair{ID: id, Key: key, Inserted: !existed})
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// lookup returns the surrogate key of every given business key present in
// the table.
func lookup(ctx context.Context, tx *sql.Tx, spec storage.UpsertSpec, keys []any) (map[string]int64, error) {
	key := myIdent(spec.KeyColumn())
	q := fmt.Sprintf("SELECT %s, CAST(%s AS CHAR) FROM %s WHERE %s IN (%s)",
		myIdent(spec.ID()), key, myFQN(spec.Table), key, placeholders(len(keys)))
	rs, err := tx.QueryContext(ctx, q, keys...)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", spec.Table, err)
	}
	defer rs.Close()

	out := make(map[string]int64, len(keys))
	for rs.Next() {
		var (
			id int64
			k  string
		)
		if err := rs.Scan(&id, &k); err != nil {
			return nil, fmt.Errorf("lookup %s: scan: %w", spec.Table, err)
		}
		out[k] = id
	}
	return out, rs.Err()
}

// buildUpsertSQL renders one multi-row upsert for n rows:
//
//	INSERT INTO `t` (`a`, `b`) VALUES (?, ?), (?, ?)
//	ON DUPLICATE KEY UPDATE `b` = VALUES(`b`)
func buildUpsertSQL(spec storage.UpsertSpec, n int) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = myIdent(c)
	}
	row := "(" + placeholders(len(cols)) + ")"
	values := make([]string, n)
	for i := range values {
		values[i] = row
	}

	set := spec.UpdateColumns
	if len(set) == 0 {
		set = []string{spec.KeyColumn()}
	}
	updates := make([]string, len(set))
	for i, c := range set {
		updates[i] = fmt.Sprintf("%s = VALUES(%s)", myIdent(c), myIdent(c))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON DUPLICATE KEY UPDATE %s",
		myFQN(spec.Table),
		strings.Join(cols, ", "),
		strings.Join(values, ", "),
		strings.Join(updates, ", "),
	)
}

// bind renders time values as ISO dates so DATE keys compare as text.
func bind(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format("2006-01-02")
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.Format("2006-01-02")
	default:
		return v
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func myFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = myIdent(p)
	}
	return strings.Join(parts, ".")
}

// Exec executes a single statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}
