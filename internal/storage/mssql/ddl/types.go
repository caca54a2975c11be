// Package ddl contains MSSQL-specific helpers for generating DDL.
//
// It maps logical types into SQL Server types. The mapping is intentionally
// conservative and biased toward safe, widely-supported choices.
package ddl

import (
	"fmt"
	"strings"

	gddl "salesdw/internal/ddl"
)

// MapType maps a logical type string into a SQL Server column type.
//
// Unknown or empty kinds fall back to NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gddl.TypeID, gddl.TypeInt, "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BIT"
	case gddl.TypeDate:
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME2"
	case gddl.TypeMoney, "numeric", "decimal":
		return "DECIMAL(12, 2)"
	case "uuid":
		return "UNIQUEIDENTIFIER"
	default:
		return "NVARCHAR(MAX)"
	}
}

// columnType sizes text columns that declare a length; NVARCHAR(MAX) cannot
// carry a UNIQUE index.
func columnType(c gddl.ColumnDef) string {
	if strings.EqualFold(c.Type, gddl.TypeText) && c.Size > 0 {
		return fmt.Sprintf("NVARCHAR(%d)", c.Size)
	}
	return MapType(c.Type)
}
