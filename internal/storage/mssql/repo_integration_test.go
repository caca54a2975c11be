//go:build integration

package mssql

import (
	"context"
	"os"
	"testing"
	"time"

	"salesdw/internal/storage"
)

// getTestDSN reads the MSSQL_TEST_DSN environment variable.
// If it is empty, the caller should skip the test.
func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MSSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MSSQL_TEST_DSN not set; skipping MSSQL integration tests")
	}
	return dsn
}

// TestUpsertReturningIntegration runs a MERGE round trip against a real SQL
// Server and checks the action reported for new and existing keys.
func TestUpsertReturningIntegration(t *testing.T) {
	dsn := getTestDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	repo, closeFn, err := NewRepository(ctx, Config{DSN: dsn})
	if err != nil {
		t.Fatalf("NewRepository() error = %v, want nil", err)
	}
	defer closeFn()

	_ = repo.Exec(ctx, "IF OBJECT_ID('dbo.salesdw_merge_test', 'U') IS NOT NULL DROP TABLE dbo.salesdw_merge_test;")
	if err := repo.Exec(ctx, `
		CREATE TABLE dbo.salesdw_merge_test (
			id BIGINT IDENTITY(1,1) PRIMARY KEY,
			name NVARCHAR(255) NOT NULL UNIQUE,
			price DECIMAL(12,2) NOT NULL
		);`); err != nil {
		t.Fatalf("Exec(CREATE TABLE) error = %v", err)
	}
	defer func() { _ = repo.Exec(context.Background(), "DROP TABLE dbo.salesdw_merge_test;") }()

	spec := storage.UpsertSpec{
		Table:           "dbo.salesdw_merge_test",
		Columns:         []string{"name", "price"},
		ConflictColumns: []string{"name"},
		UpdateColumns:   []string{"price"},
	}
	first, err := repo.UpsertReturning(ctx, spec, [][]any{{"Ball", 20.0}, {"Kite", 5.0}})
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	ids := map[string]int64{}
	for _, kp := range first {
		if !kp.Inserted {
			t.Fatalf("first merge reported update for %+v", kp)
		}
		ids[kp.Key] = kp.ID
	}

	second, err := repo.UpsertReturning(ctx, spec, [][]any{{"Ball", 21.0}})
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if len(second) != 1 || second[0].Inserted || second[0].ID != ids["Ball"] {
		t.Fatalf("second merge = %+v, want update of id %d", second, ids["Ball"])
	}
}
