package ddl

import (
	"strings"
	"testing"

	gddl "salesdw/internal/ddl"
)

// TestQuoteIdent verifies SQL Server identifier quoting and escaping behavior
// for single identifier segments in quoteIdent.
func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want string
	}{
		{id: "name", want: "[name]"},
		{id: "", want: "[]"},
		{id: "order id", want: "[order id]"},
		{id: "[name]", want: "[[name]]]"},
		{id: "weird]id", want: "[weird]]id]"},
	}
	for _, tt := range tests {
		if got := quoteIdent(tt.id); got != tt.want {
			t.Fatalf("quoteIdent(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

// TestBuildCreateTableSQLStar renders a fact table with identity, UNIQUE and
// FOREIGN KEY constraints inside the OBJECT_ID guard.
func TestBuildCreateTableSQLStar(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN: "dbo.FactSales",
		Columns: []gddl.ColumnDef{
			{Name: "id", Type: gddl.TypeID, Identity: true},
			{Name: "orderNumber", Type: gddl.TypeText, Size: 255, Unique: true},
			{Name: "DateId", Type: gddl.TypeInt, References: &gddl.ForeignKey{Table: "dbo.Date", Column: "id"}},
		},
	})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "IF OBJECT_ID(N'[dbo].[FactSales]', N'U') IS NULL\nBEGIN\n" +
		"  CREATE TABLE [dbo].[FactSales] (\n" +
		"    [id] BIGINT IDENTITY(1,1) NOT NULL,\n" +
		"    [orderNumber] NVARCHAR(255) NOT NULL,\n" +
		"    [DateId] BIGINT NOT NULL,\n" +
		"    PRIMARY KEY ([id]),\n" +
		"    UNIQUE ([orderNumber]),\n" +
		"    FOREIGN KEY ([DateId]) REFERENCES [dbo].[Date] ([id])\n" +
		"  );\nEND;"
	if got != want {
		t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	if _, err := BuildCreateTableSQL(gddl.TableDef{}); err == nil ||
		!strings.Contains(err.Error(), "mssql ddl: table FQN must not be empty") {
		t.Fatalf("err = %v", err)
	}
	if _, err := BuildCreateTableSQL(gddl.TableDef{FQN: "t", Columns: []gddl.ColumnDef{{Name: " "}}}); err == nil ||
		!strings.Contains(err.Error(), "column with empty name") {
		t.Fatalf("err = %v", err)
	}
}
