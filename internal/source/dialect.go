package source

import "strings"

// Dialect holds the per-kind identifier quoting.
type Dialect struct {
	Name  string
	Quote func(ident string) string
}

func quoteWith(open, close string) func(string) string {
	return func(ident string) string {
		return open + strings.ReplaceAll(ident, close, close+close) + close
	}
}

// DialectFor returns the dialect of kind. Unknown kinds get ANSI double
// quotes.
func DialectFor(kind string) Dialect {
	switch kind {
	case KindMySQL:
		return Dialect{Name: kind, Quote: quoteWith("`", "`")}
	case KindSQLServer:
		return Dialect{Name: kind, Quote: quoteWith("[", "]")}
	default:
		return Dialect{Name: kind, Quote: quoteWith(`"`, `"`)}
	}
}

// Cols quotes each column and joins them with ", ", qualifying them with
// alias when it is not empty.
func (d Dialect) Cols(alias string, cols ...string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		if alias != "" {
			parts[i] = alias + "." + d.Quote(c)
		} else {
			parts[i] = d.Quote(c)
		}
	}
	return strings.Join(parts, ", ")
}
