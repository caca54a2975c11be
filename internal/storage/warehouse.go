// Package storage contains the storage-agnostic warehouse contract, the
// backend factory, and schema bootstrap helpers.
//
// Backends (postgres, sqlite, mysql, mssql) live in sub-packages and register
// themselves in init(); import internal/storage/all to enable every built-in
// backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Warehouse is the write side of the star schema.
type Warehouse interface {
	// UpsertReturning inserts rows into spec.Table, updating spec.UpdateColumns
	// on conflict with spec.ConflictColumns, and returns the surrogate key of
	// every affected row. All statements of one call share a single committed
	// transaction; on error nothing is committed.
	UpsertReturning(ctx context.Context, spec UpsertSpec, rows [][]any) ([]KeyPair, error)

	// Exec runs a statement outside any batch, typically DDL.
	Exec(ctx context.Context, sql string) error

	Close()
}

// UpsertSpec describes one upsert-returning call.
type UpsertSpec struct {
	Table           string   // target table, e.g. "Users"
	Columns         []string // insert columns; each row has one value per column
	ConflictColumns []string // business key (exactly one column)
	UpdateColumns   []string // columns overwritten when the key already exists
	IDColumn        string   // surrogate key column, default "id"
}

// KeyPair is one returned row: the surrogate key and the business key
// rendered as text (dates as YYYY-MM-DD).
type KeyPair struct {
	ID       int64
	Key      string
	Inserted bool
}

// ID returns the surrogate key column name.
func (s UpsertSpec) ID() string {
	if s.IDColumn == "" {
		return "id"
	}
	return s.IDColumn
}

// KeyColumn returns the business key column.
func (s UpsertSpec) KeyColumn() string {
	if len(s.ConflictColumns) == 0 {
		return ""
	}
	return s.ConflictColumns[0]
}

// KeyIndex returns the position of the business key in Columns, or -1.
func (s UpsertSpec) KeyIndex() int {
	k := s.KeyColumn()
	for i, c := range s.Columns {
		if c == k {
			return i
		}
	}
	return -1
}

// Validate checks that the spec is internally consistent.
func (s UpsertSpec) Validate() error {
	if strings.TrimSpace(s.Table) == "" {
		return fmt.Errorf("upsert: table must not be empty")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("upsert %s: columns must not be empty", s.Table)
	}
	if len(s.ConflictColumns) != 1 {
		return fmt.Errorf("upsert %s: exactly one conflict column is supported, got %d", s.Table, len(s.ConflictColumns))
	}
	if s.KeyIndex() < 0 {
		return fmt.Errorf("upsert %s: conflict column %q not in columns", s.Table, s.KeyColumn())
	}
	cols := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		cols[c] = struct{}{}
	}
	for _, c := range s.UpdateColumns {
		if _, ok := cols[c]; !ok {
			return fmt.Errorf("upsert %s: update column %q not in columns", s.Table, c)
		}
		if c == s.KeyColumn() {
			return fmt.Errorf("upsert %s: update column %q is the conflict column", s.Table, c)
		}
	}
	return nil
}

// CheckRows verifies every row has one value per column.
func (s UpsertSpec) CheckRows(rows [][]any) error {
	for i, r := range rows {
		if len(r) != len(s.Columns) {
			return fmt.Errorf("upsert %s: row %d has %d values, want %d", s.Table, i, len(r), len(s.Columns))
		}
	}
	return nil
}

// Chunks splits rows so that no statement binds more than maxParams
// parameters or carries more than maxRows rows (0 means unbounded).
func Chunks(rows [][]any, cols, maxParams, maxRows int) [][][]any {
	if len(rows) == 0 {
		return nil
	}
	per := len(rows)
	if cols > 0 && maxParams > 0 {
		per = max(1, maxParams/cols)
	}
	if maxRows > 0 && per > maxRows {
		per = maxRows
	}
	out := make([][][]any, 0, (len(rows)+per-1)/per)
	for start := 0; start < len(rows); start += per {
		out = append(out, rows[start:min(start+per, len(rows))])
	}
	return out
}

// Config selects and configures a warehouse backend.
type Config struct {
	Kind     string // "postgres", "sqlite", "mysql", "mssql"
	DSN      string
	MaxConns int // 0 keeps the driver default
}

// Factory constructs a Warehouse for a backend kind.
type Factory func(ctx context.Context, cfg Config) (Warehouse, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. A later registration for the
// same kind replaces the earlier one.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens the warehouse for cfg.Kind.
func New(ctx context.Context, cfg Config) (Warehouse, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
