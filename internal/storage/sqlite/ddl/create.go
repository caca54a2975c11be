// Package ddl provides SQLite-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses simple double-quoted identifiers: "table", "col".
//   - Emits CREATE TABLE IF NOT EXISTS.
//   - Declares identity columns as INTEGER PRIMARY KEY AUTOINCREMENT.
package ddl

import (
	"fmt"
	"strings"

	gddl "salesdw/internal/ddl"
)

// Dialect renders SQLite DDL.
var Dialect = gddl.Dialect{
	Name:     "sqlite ddl",
	Quote:    quoteIdent,
	MapType:  columnType,
	Identity: func(gddl.ColumnDef) string { return "INTEGER PRIMARY KEY AUTOINCREMENT" },
	InlinePK: true,
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", fqn, body)
	},
}

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for the given
// table definition. TableDef.FQN is interpreted as a table name; if it
// contains dots (e.g., "main.events"), each segment is individually quoted.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(Dialect, t)
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
