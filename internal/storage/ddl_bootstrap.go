package storage

import (
	"context"
	"fmt"
	"sync"

	"salesdw/internal/ddl"
)

// DDLRenderer renders a backend-specific CREATE TABLE statement that is a
// no-op when the table already exists.
//
// Backends register their renderer for a storage kind at init time.
type DDLRenderer func(t ddl.TableDef) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLRenderer{}
)

// RegisterDDL registers (or replaces) the DDLRenderer for kind.
func RegisterDDL(kind string, fn DDLRenderer) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// RenderSchema renders every table in defs, in order, for kind.
func RenderSchema(kind string, defs []ddl.TableDef) ([]string, error) {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no DDL renderer registered for storage.kind=%q", kind)
	}
	out := make([]string, 0, len(defs))
	for _, td := range defs {
		stmt, err := fn(td)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", td.FQN, err)
		}
		out = append(out, stmt)
	}
	return out, nil
}

// EnsureSchema creates every table in defs that does not exist yet. Tables
// are created in order, so referenced tables must come first.
func EnsureSchema(ctx context.Context, kind string, wh Warehouse, defs []ddl.TableDef) error {
	stmts, err := RenderSchema(kind, defs)
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if err := wh.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply DDL for %s: %w", defs[i].FQN, err)
		}
	}
	return nil
}
