package ddl

import (
	"fmt"
	"strings"

	gddl "salesdw/internal/ddl"
)

// Dialect renders MySQL DDL: backtick identifiers, AUTO_INCREMENT identity
// columns and InnoDB tables in utf8mb4.
var Dialect = gddl.Dialect{
	Name:     "mysql ddl",
	Quote:    quoteIdent,
	MapType:  columnType,
	Identity: func(gddl.ColumnDef) string { return "BIGINT NOT NULL AUTO_INCREMENT" },
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;", fqn, body)
	},
}

// BuildCreateTableSQL returns a MySQL CREATE TABLE IF NOT EXISTS statement.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(Dialect, t)
}

func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
