package ddl

import (
	"fmt"
	"strings"

	gddl "salesdw/internal/ddl"
)

// Dialect renders Postgres DDL: double-quoted identifiers, identity columns
// and CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:     "postgres ddl",
	Quote:    quoteIdent,
	MapType:  columnType,
	Identity: func(gddl.ColumnDef) string { return "BIGINT GENERATED BY DEFAULT AS IDENTITY" },
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", fqn, body)
	},
}

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS statement
// for the given table definition.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(Dialect, t)
}

// quoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	quoteIdent(`orderNumber`) => `"orderNumber"`
//	quoteIdent(`weird"name`)  => `"weird""name"`
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
