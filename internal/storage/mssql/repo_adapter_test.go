package mssql

import (
	"context"
	"testing"

	"salesdw/internal/storage"
)

// TestMSSQLStorageRegistrationUsesNewRepositoryHook verifies that the "mssql"
// storage backend registered in init() uses the newRepository hook and that
// the wrappedRepo correctly propagates configuration and close behavior.
func TestMSSQLStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	ctx := context.Background()

	origNewRepository := newRepository
	defer func() { newRepository = origNewRepository }()

	var (
		called bool
		gotCfg Config
		closed bool
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		called = true
		gotCfg = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	cfg := storage.Config{Kind: "mssql", DSN: "sqlserver://example", MaxConns: 2}
	wh, err := storage.New(ctx, cfg)
	if err != nil {
		t.Fatalf("storage.New() error = %v, want nil", err)
	}
	if !called {
		t.Fatalf("newRepository hook was not called")
	}
	if gotCfg.DSN != cfg.DSN || gotCfg.MaxConns != 2 {
		t.Errorf("hook cfg = %+v, want DSN %q MaxConns 2", gotCfg, cfg.DSN)
	}

	wh.Close()
	if !closed {
		t.Fatalf("Close() did not call closeFn")
	}
}
