// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "salesdw/internal/ddl"
)

// MapType normalizes a loosely-specified logical type into a Postgres SQL type.
//
//	"id"/"int"/"integer"/"bigint" -> BIGINT
//	"bool"/"boolean"              -> BOOLEAN
//	"date"                        -> DATE
//	"timestamp"/"timestamptz"     -> TIMESTAMPTZ
//	"money"/"numeric"/"decimal"   -> NUMERIC(12,2)
//	everything else               -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gddl.TypeID, gddl.TypeInt, "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BOOLEAN"
	case gddl.TypeDate:
		return "DATE"
	case "timestamp", "timestamptz":
		return "TIMESTAMPTZ"
	case gddl.TypeMoney, "numeric", "decimal":
		return "NUMERIC(12,2)"
	default:
		return "TEXT"
	}
}

func columnType(c gddl.ColumnDef) string { return MapType(c.Type) }
