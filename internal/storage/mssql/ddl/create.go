// Package ddl provides MSSQL-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses SQL Server-style identifier quoting: [schema].[table], [col].
//   - Wraps CREATE TABLE in an IF OBJECT_ID(...) IS NULL guard since T-SQL
//     does not support CREATE TABLE IF NOT EXISTS.
//   - Declares identity columns as BIGINT IDENTITY(1,1).
package ddl

import (
	"fmt"
	"strings"

	gddl "salesdw/internal/ddl"
)

// Dialect renders T-SQL DDL.
var Dialect = gddl.Dialect{
	Name:     "mssql ddl",
	Quote:    quoteIdent,
	MapType:  columnType,
	Identity: func(gddl.ColumnDef) string { return "BIGINT IDENTITY(1,1) NOT NULL" },
	Wrap: func(fqn, body string) string {
		// Indent inner CREATE TABLE for readability.
		return fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
			fqn, fqn, strings.ReplaceAll(body, "\n  ", "\n    "),
		)
	},
}

// BuildCreateTableSQL returns a T-SQL script that creates a table matching
// the provided definition if it does not already exist:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE [NOT NULL] [DEFAULT expr],
//	    [col2] TYPE,
//	    PRIMARY KEY ([pk1], [pk2])
//	  );
//	END
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(Dialect, t)
}

// quoteIdent quotes a single identifier segment for SQL Server using
// bracket syntax, escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
