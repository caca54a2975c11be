package ddl

import (
	"strings"
	"testing"

	gddl "salesdw/internal/ddl"
)

// TestBuildCreateTableSQL_Fact checks identity, UNIQUE and FOREIGN KEY
// rendering for a fact table.
func TestBuildCreateTableSQL_Fact(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN: "FactSales",
		Columns: []gddl.ColumnDef{
			{Name: "id", Type: gddl.TypeID, Identity: true},
			{Name: "revenue", Type: gddl.TypeMoney},
			{Name: "orderNumber", Type: gddl.TypeText, Unique: true},
			{Name: "UserId", Type: gddl.TypeInt, References: &gddl.ForeignKey{Table: "Users", Column: "id"}},
		},
	})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"FactSales\" (\n" +
		"  \"id\" INTEGER PRIMARY KEY AUTOINCREMENT,\n" +
		"  \"revenue\" REAL NOT NULL,\n" +
		"  \"orderNumber\" TEXT NOT NULL,\n" +
		"  \"UserId\" INTEGER NOT NULL,\n" +
		"  UNIQUE (\"orderNumber\"),\n" +
		"  FOREIGN KEY (\"UserId\") REFERENCES \"Users\" (\"id\")\n" +
		");"
	if got != want {
		t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildCreateTableSQL_QuotesSegments(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN:     "main.we\"ird",
		Columns: []gddl.ColumnDef{{Name: "a", SQLType: "TEXT", Nullable: true}},
	})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	if !strings.HasPrefix(got, `CREATE TABLE IF NOT EXISTS "main"."we""ird" (`) {
		t.Fatalf("unexpected statement:\n%s", got)
	}
	if _, err := BuildCreateTableSQL(gddl.TableDef{FQN: "t"}); err == nil ||
		!strings.Contains(err.Error(), "sqlite ddl: at least one column is required") {
		t.Fatalf("err = %v", err)
	}
}
