// Package sqlite implements a SQLite-backed storage.Warehouse using
// database/sql and modernc.org/sqlite. Upserts use INSERT ... ON CONFLICT
// ... RETURNING inside a single transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"salesdw/internal/storage"
)

// maxParams is SQLITE_MAX_VARIABLE_NUMBER for SQLite >= 3.32.
const maxParams = 32766

// Repository is a SQLite-backed implementation of storage.Warehouse.
type Repository struct {
	db *sql.DB
}

// Open opens a SQLite database with a single connection. SQLite allows one
// writer at a time, and a single connection keeps per-connection pragmas in
// effect for the life of the handle.
func Open(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	db, err := Open(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// UpsertReturning implements storage.Warehouse. SQLite cannot tell from
// RETURNING whether a row was inserted, so keys already present are selected
// first inside the same transaction.
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
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
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

		existing, err := existingKeys(ctx, tx, spec, keys)
		if err != nil {
			return nil, err
		}

		rs, err := tx.QueryContext(ctx, buildUpsertSQL(spec, len(chunk)), args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: upsert %s: %w", spec.Table, err)
		}
		for rs.Next() {
			var kp storage.KeyPair
			if err := rs.Scan(&kp.ID, &kp.Key); err != nil {
				rs.Close()
				return nil, fmt.Errorf("sqlite: upsert %s: scan: %w", spec.Table, err)
			}
			_, seen := existing[kp.Key]
			kp.Inserted = !seen
			out = append(out, kp)
		}
		if err := rs.Err(); err != nil {
			rs.Close()
			return nil, fmt.Errorf("sqlite: upsert %s: %w", spec.Table, err)
		}
		rs.Close()
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit: %w", err)
	}
	return out, nil
}

func existingKeys(ctx context.Context, tx *sql.Tx, spec storage.UpsertSpec, keys []any) (map[string]struct{}, error) {
	key := sqlIdent(spec.KeyColumn())
	q := fmt.Sprintf("SELECT CAST(%s AS TEXT) FROM %s WHERE %s IN (%s)",
		key, sqlFQN(spec.Table), key, placeholders(len(keys)))
	rs, err := tx.QueryContext(ctx, q, keys...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: lookup %s: %w", spec.Table, err)
	}
	defer rs.Close()

	out := make(map[string]struct{}, len(keys))
	for rs.Next() {
		var k string
		if err := rs.Scan(&k); err != nil {
			return nil, fmt.Errorf("sqlite: lookup %s: scan: %w", spec.Table, err)
		}
		out[k] = struct{}{}
	}
	return out, rs.Err()
}

// buildUpsertSQL renders one multi-row upsert for n rows:
//
//	INSERT INTO "t" ("a", "b") VALUES (?, ?), (?, ?)
//	ON CONFLICT ("a") DO UPDATE SET "b" = excluded."b"
//	RETURNING "id", CAST("a" AS TEXT)
func buildUpsertSQL(spec storage.UpsertSpec, n int) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = sqlIdent(c)
	}
	row := "(" + placeholders(len(cols)) + ")"
	values := make([]string, n)
	for i := range values {
		values[i] = row
	}

	key := spec.KeyColumn()
	set := spec.UpdateColumns
	if len(set) == 0 {
		set = []string{key}
	}
	updates := make([]string, len(set))
	for i, c := range set {
		updates[i] = fmt.Sprintf("%s = excluded.%s", sqlIdent(c), sqlIdent(c))
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO UPDATE SET %s RETURNING %s, CAST(%s AS TEXT)",
		sqlFQN(spec.Table),
		strings.Join(cols, ", "),
		strings.Join(values, ", "),
		sqlIdent(key),
		strings.Join(updates, ", "),
		sqlIdent(spec.ID()),
		sqlIdent(key),
	)
}

// bind converts values the driver would otherwise store in a form that does
// not compare as a calendar date. Time values are stored as ISO dates.
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

func sqlIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func sqlFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = sqlIdent(p)
	}
	return strings.Join(parts, ".")
}

// Exec executes an arbitrary SQL statement (typically DDL) using the underlying
// database/sql connection.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}
