package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Table is a source table and the columns the loader reads from it.
type Table struct {
	Name    string
	Columns []string
}

// Source is the operational schema the extraction queries depend on.
var Source = []Table{
	{Name: "users", Columns: []string{
		"id", "username", "firstName", "lastName", "dateOfBirth", "gender",
		"address1", "address2", "city", "country", "zipCode",
	}},
	{Name: "products", Columns: []string{"id", "category", "description", "name", "price"}},
	{Name: "orders", Columns: []string{"id", "orderNumber", "createdAt", "UserId"}},
	{Name: "orderitems", Columns: []string{"id", "quantity", "OrderId", "ProductId"}},
}

// ColumnLister reports the live column names of a table.
type ColumnLister interface {
	Columns(ctx context.Context, table string) ([]string, error)
}

// MismatchError lists, per table, the expected columns the source lacks.
type MismatchError struct {
	Missing map[string][]string
}

func (e *MismatchError) Error() string {
	tables := make([]string, 0, len(e.Missing))
	for t := range e.Missing {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		parts = append(parts, fmt.Sprintf("%s(%s)", t, strings.Join(e.Missing[t], ", ")))
	}
	return "source schema mismatch: missing columns " + strings.Join(parts, "; ")
}

// Check compares want against the live schema. Column names match
// case-insensitively. It returns a *MismatchError when any column is
// missing, or the first error from the lister.
func Check(ctx context.Context, l ColumnLister, want []Table) error {
	missing := map[string][]string{}
	for _, t := range want {
		live, err := l.Columns(ctx, t.Name)
		if err != nil {
			return fmt.Errorf("schema check %s: %w", t.Name, err)
		}
		have := make(map[string]struct{}, len(live))
		for _, c := range live {
			have[strings.ToLower(c)] = struct{}{}
		}
		for _, c := range t.Columns {
			if _, ok := have[strings.ToLower(c)]; !ok {
				missing[t.Name] = append(missing[t.Name], c)
			}
		}
	}
	if len(missing) > 0 {
		return &MismatchError{Missing: missing}
	}
	return nil
}
