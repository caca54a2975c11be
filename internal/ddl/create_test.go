package ddl

import (
	"strings"
	"testing"
)

// TestRender_Invalid checks the definition errors Render reports. The zero
// Dialect has no type mapping, so every column needs an SQLType.
func TestRender_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  TableDef
		want string
	}{
		{name: "no table", def: TableDef{FQN: "  ", Columns: []ColumnDef{{Name: "id", SQLType: "BIGINT"}}}, want: "ddl: table FQN must not be empty"},
		{name: "no columns", def: TableDef{FQN: "Users"}, want: "at least one column is required"},
		{name: "blank column", def: TableDef{FQN: "Users", Columns: []ColumnDef{{Name: " ", SQLType: "TEXT"}}}, want: "column with empty name in table Users"},
		{name: "untyped column", def: TableDef{FQN: "Users", Columns: []ColumnDef{{Name: "username", Type: TypeText}}}, want: "column username missing SQLType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Render(Dialect{}, tt.def); err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Render() error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

// TestRender_Columns renders a Users-like table with explicit SQL types:
// nullability, defaults, trimming and a primary key.
func TestRender_Columns(t *testing.T) {
	t.Parallel()

	got, err := Render(Dialect{}, TableDef{
		FQN: " dw.Users ",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "BIGINT", PrimaryKey: true, Nullable: true},
			{Name: " username ", SQLType: " VARCHAR(255) "},
			{Name: "dateOfBirth", SQLType: "DATE", Nullable: true},
			{Name: "gender", SQLType: "VARCHAR(16)", Nullable: true, Default: "  NULL  "},
		},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "CREATE TABLE dw.Users (\n" +
		"  id BIGINT NOT NULL,\n" +
		"  username VARCHAR(255) NOT NULL,\n" +
		"  dateOfBirth DATE,\n" +
		"  gender VARCHAR(16) DEFAULT NULL,\n" +
		"  PRIMARY KEY (id)\n" +
		");"
	if got != want {
		t.Fatalf("Render() =\n%s\nwant:\n%s", got, want)
	}
}

// TestRender_DialectConstraints covers identity, UNIQUE and FOREIGN KEY
// rendering through a dialect with quoting and type mapping.
func TestRender_DialectConstraints(t *testing.T) {
	t.Parallel()

	d := Dialect{
		Name:  "test ddl",
		Quote: func(s string) string { return `"` + s + `"` },
		MapType: func(c ColumnDef) string {
			switch c.Type {
			case TypeID, TypeInt:
				return "BIGINT"
			case TypeMoney:
				return "NUMERIC(12,2)"
			default:
				return "TEXT"
			}
		},
		Identity: func(ColumnDef) string { return "BIGINT GENERATED BY DEFAULT AS IDENTITY" },
		Wrap: func(fqn, body string) string {
			return "CREATE TABLE IF NOT EXISTS " + fqn + " (\n  " + body + "\n);"
		},
	}
	def := TableDef{
		FQN: "FactSales",
		Columns: []ColumnDef{
			{Name: "id", Type: TypeID, Identity: true},
			{Name: "orderNumber", Type: TypeText, Unique: true},
			{Name: "revenue", Type: TypeMoney},
			{Name: "UserId", Type: TypeInt, References: &ForeignKey{Table: "Users", Column: "id"}},
		},
	}

	got, err := Render(d, def)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"FactSales\" (\n" +
		"  \"id\" BIGINT GENERATED BY DEFAULT AS IDENTITY,\n" +
		"  \"orderNumber\" TEXT NOT NULL,\n" +
		"  \"revenue\" NUMERIC(12,2) NOT NULL,\n" +
		"  \"UserId\" BIGINT NOT NULL,\n" +
		"  PRIMARY KEY (\"id\"),\n" +
		"  UNIQUE (\"orderNumber\"),\n" +
		"  FOREIGN KEY (\"UserId\") REFERENCES \"Users\" (\"id\")\n" +
		");"
	if got != want {
		t.Fatalf("Render() =\n%s\nwant:\n%s", got, want)
	}

	d.InlinePK = true
	got, err = Render(d, TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id", Type: TypeID, Identity: true}}})
	if err != nil {
		t.Fatalf("Render inline: %v", err)
	}
	if strings.Contains(got, "PRIMARY KEY") {
		t.Fatalf("inline identity should not add a PRIMARY KEY clause:\n%s", got)
	}
}

func TestTableDef_Lookup(t *testing.T) {
	t.Parallel()

	def := TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a"}, {Name: "b", Unique: true}}}
	if got := def.ColumnNames(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("ColumnNames() = %v", got)
	}
	if c, ok := def.Column("b"); !ok || !c.Unique {
		t.Fatalf("Column(b) = %+v, %v", c, ok)
	}
	if _, ok := def.Column("zzz"); ok {
		t.Fatalf("Column(zzz) found, want missing")
	}
}
