// Package builtin contains simple, reusable transformers used by the
// cleaning stages.
package builtin

import (
	"database/sql"
	"strings"
)

// Field names a record field and reports whether the record has a usable
// value for it.
type Field[T any] struct {
	Name    string
	Present func(T) bool
}

// Require removes any record missing a value for one of the specified fields.
type Require[T any] struct {
	Fields []Field[T]
}

// Apply returns a filtered slice containing only records that have all
// required fields present. The input's backing array is reused.
func (r Require[T]) Apply(in []T) []T {
	out := in[:0]
	for _, rec := range in {
		if _, missing := r.Missing(rec); !missing {
			out = append(out, rec)
		}
	}
	return out
}

// Missing returns the name of the first required field rec lacks.
func (r Require[T]) Missing(rec T) (string, bool) {
	for _, f := range r.Fields {
		if !f.Present(rec) {
			return f.Name, true
		}
	}
	return "", false
}

// NonBlank reports whether s is non-NULL and has a non-whitespace character.
func NonBlank(s sql.NullString) bool {
	return s.Valid && strings.TrimSpace(Clean(s.String)) != ""
}
