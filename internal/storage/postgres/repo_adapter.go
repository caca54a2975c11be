// Package postgres provides a Postgres-backed storage.Warehouse implementation.
// This adapter wires the Postgres backend into the storage-agnostic factory by
// registering a constructor at init time, so callers obtain a Warehouse via
// storage.New without importing this package directly.
//
// It also registers the Postgres DDL renderer, so schema bootstrap only needs
// the storage kind.
package postgres

import (
	"context"

	"salesdw/internal/storage"
	pgddl "salesdw/internal/storage/postgres/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo implements storage.Warehouse by delegating to the concrete
// *postgres.Repository while providing a Close method that calls the close
// function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Ensure wrappedRepo satisfies storage.Warehouse at compile time.
var _ storage.Warehouse = (*wrappedRepo)(nil)

// Close implements storage.Warehouse.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// init registers the "postgres" backend and its DDL renderer.
//
// Typical usage:
//
//	wh, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn})
//	defer wh.Close()
//	err = storage.EnsureSchema(ctx, "postgres", wh, schema.Warehouse())
func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Warehouse, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:      cfg.DSN,
			MaxConns: int32(cfg.MaxConns),
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("postgres", pgddl.BuildCreateTableSQL)
}
