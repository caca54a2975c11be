package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"salesdw/internal/ddl"
	"salesdw/internal/storage"
)

// TestSQLiteStorageRegistrationUsesNewRepositoryHook verifies that the
// "sqlite" storage backend registered in init() uses the newRepository hook
// and that wrappedRepo correctly delegates Close.
func TestSQLiteStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
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

	wh, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: "wh.db"})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if !called {
		t.Fatalf("newRepository hook was not called")
	}
	if gotCfg.DSN != "wh.db" {
		t.Fatalf("DSN = %q, want %q", gotCfg.DSN, "wh.db")
	}
	wh.Close()
	if !closed {
		t.Fatalf("Close did not invoke closeFn")
	}
}

// TestEnsureSchema_SQLite applies registered DDL twice to a real database to
// show it is idempotent.
func TestEnsureSchema_SQLite(t *testing.T) {
	ctx := context.Background()
	r, closeFn, err := NewRepository(ctx, Config{DSN: filepath.Join(t.TempDir(), "wh.db")})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	wh := &wrappedRepo{Repository: r, closeFn: closeFn}
	defer wh.Close()

	defs := []ddl.TableDef{
		{FQN: "Users", Columns: []ddl.ColumnDef{
			{Name: "id", Type: ddl.TypeID, Identity: true},
			{Name: "username", Type: ddl.TypeText, Unique: true},
		}},
		{FQN: "FactSales", Columns: []ddl.ColumnDef{
			{Name: "id", Type: ddl.TypeID, Identity: true},
			{Name: "UserId", Type: ddl.TypeInt, References: &ddl.ForeignKey{Table: "Users", Column: "id"}},
		}},
	}
	for i := 0; i < 2; i++ {
		if err := storage.EnsureSchema(ctx, "sqlite", wh, defs); err != nil {
			t.Fatalf("EnsureSchema pass %d: %v", i+1, err)
		}
	}
}
