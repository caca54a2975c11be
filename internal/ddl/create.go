// Package ddl defines a small, backend-agnostic model for SQL DDL and a
// renderer that turns that model into CREATE TABLE statements.
//
// The model is generic; everything dialect-specific (identifier quoting, type
// mapping, identity columns, the "create if missing" guard) lives in a
// Dialect value. Backend packages (internal/storage/<backend>/ddl) declare
// their Dialect and call Render.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect captures the parts of CREATE TABLE that differ between backends.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string

	// Quote quotes a single identifier segment. nil emits names verbatim.
	Quote func(string) string

	// MapType returns the SQL type for a column whose SQLType is empty.
	MapType func(ColumnDef) string

	// Identity renders the full definition of an identity column after the
	// quoted name (e.g. "BIGINT GENERATED BY DEFAULT AS IDENTITY"). When
	// InlinePK is set the rendered text already declares the primary key.
	Identity func(ColumnDef) string
	InlinePK bool

	// Wrap turns the quoted FQN and the column body into the final
	// statement. nil renders "CREATE TABLE <fqn> (<body>);".
	Wrap func(fqn, body string) string
}

// Render renders a CREATE TABLE statement for t in dialect d.
//
// Rules:
//
//   - t.FQN must be non-empty; each segment is quoted with d.Quote.
//
//   - Each column must have a non-empty Name and resolve to a SQL type,
//     either via SQLType or d.MapType.
//
//   - A column is rendered as:
//
//     <Name> <Type> [NOT NULL] [DEFAULT <Default>]
//
//     where NOT NULL is added when Nullable == false or the column is a
//     primary key.
//
//   - Primary key, UNIQUE and FOREIGN KEY constraints follow the columns,
//     in that order, each in column declaration order.
func Render(d Dialect, t TableDef) (string, error) {
	name := d.Name
	if name == "" {
		name = "ddl"
	}
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", name)
	}

	quote := d.Quote
	if quote == nil {
		quote = func(s string) string { return s }
	}

	cols := make([]string, 0, len(t.Columns)+4)
	var pks, uniques, fks []string

	for _, c := range t.Columns {
		col := strings.TrimSpace(c.Name)
		if col == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", name, fqn)
		}

		var sb strings.Builder
		sb.WriteString(quote(col))
		sb.WriteByte(' ')

		switch {
		case c.Identity && d.Identity != nil:
			sb.WriteString(d.Identity(c))
		default:
			typ := strings.TrimSpace(c.SQLType)
			if typ == "" && d.MapType != nil && (c.Type != "" || c.Identity) {
				typ = d.MapType(c)
			}
			if typ == "" {
				return "", fmt.Errorf("%s: column %s missing SQLType", name, col)
			}
			sb.WriteString(typ)
			if !c.Nullable || c.PrimaryKey || c.Identity {
				sb.WriteString(" NOT NULL")
			}
			if def := strings.TrimSpace(c.Default); def != "" {
				sb.WriteString(" DEFAULT ")
				sb.WriteString(def)
			}
		}
		cols = append(cols, sb.String())

		if (c.PrimaryKey || c.Identity) && !(c.Identity && d.InlinePK) {
			pks = append(pks, quote(col))
		}
		if c.Unique {
			uniques = append(uniques, fmt.Sprintf("UNIQUE (%s)", quote(col)))
		}
		if ref := c.References; ref != nil {
			fks = append(fks, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
				quote(col), QuoteFQN(quote, ref.Table), quote(ref.Column)))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	cols = append(cols, uniques...)
	cols = append(cols, fks...)

	q := QuoteFQN(quote, fqn)
	if d.Wrap != nil {
		return d.Wrap(q, strings.Join(cols, ",\n  ")), nil
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", q, strings.Join(cols, ",\n  ")), nil
}

// QuoteFQN quotes each dot-separated segment of fqn with quote. Empty
// segments are dropped.
func QuoteFQN(quote func(string) string, fqn string) string {
	if quote == nil {
		return fqn
	}
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}
