// Package ddl contains SQLite-specific helpers for generating DDL.
//
// It maps logical types into SQLite column types. The mapping is
// intentionally simple and biased toward SQLite's type affinities.
package ddl

import (
	"strings"

	gddl "salesdw/internal/ddl"
)

// MapType maps a logical type string (e.g., "int", "money", "date") into a
// SQLite column type.
//
// SQLite supports dynamic typing, so this mapping prefers canonical affinities:
//   - integer-ish types -> INTEGER
//   - boolean          -> INTEGER (0/1)
//   - money/float      -> REAL
//   - date/time        -> TEXT (ISO-8601)
//   - others           -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gddl.TypeID, gddl.TypeInt, "integer", "bigint":
		return "INTEGER"
	case "bool", "boolean":
		return "INTEGER"
	case gddl.TypeMoney, "float", "double", "real", "numeric", "decimal":
		return "REAL"
	case gddl.TypeDate, "timestamp", "datetime", "timestamptz":
		return "TEXT"
	case "blob", "bytes":
		return "BLOB"
	default:
		return "TEXT"
	}
}

func columnType(c gddl.ColumnDef) string { return MapType(c.Type) }
