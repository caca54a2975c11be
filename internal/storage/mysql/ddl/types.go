// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import (
	"fmt"
	"strings"

	gddl "salesdw/internal/ddl"
)

// MapType maps a logical type string into a MySQL column type. Text columns
// become TEXT, which cannot carry a UNIQUE index; use a sized column for
// those (see columnType).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gddl.TypeID, gddl.TypeInt, "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "TINYINT(1)"
	case gddl.TypeDate:
		return "DATE"
	case "timestamp", "datetime":
		return "DATETIME(6)"
	case gddl.TypeMoney, "numeric", "decimal":
		return "DECIMAL(12,2)"
	default:
		return "TEXT"
	}
}

// columnType sizes text columns that declare a length.
func columnType(c gddl.ColumnDef) string {
	if strings.EqualFold(c.Type, gddl.TypeText) && c.Size > 0 {
		return fmt.Sprintf("VARCHAR(%d)", c.Size)
	}
	return MapType(c.Type)
}
