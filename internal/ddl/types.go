package ddl

// Logical column types. Each backend maps them to a concrete SQL type.
const (
	TypeID    = "id"    // 64-bit integer surrogate key
	TypeInt   = "int"   // 64-bit integer
	TypeText  = "text"  // unicode text; Size bounds it when indexed
	TypeDate  = "date"  // calendar date
	TypeMoney = "money" // fixed point, two decimals
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - Type: logical type (TypeID, TypeText, ...), mapped per dialect
//   - SQLType: explicit SQL type; when set it wins over Type
//   - Size: maximum length for TypeText columns that carry an index
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Identity: database-generated surrogate key (implies PrimaryKey)
//   - Unique: column carries a UNIQUE constraint
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
//   - References: foreign key target, if any
type ColumnDef struct {
	Name       string
	Type       string
	SQLType    string
	Size       int
	Nullable   bool
	PrimaryKey bool
	Identity   bool
	Unique     bool
	Default    string
	References *ForeignKey
}

// ForeignKey names the referenced table and column.
type ForeignKey struct {
	Table  string
	Column string
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "schema.table") and will
// be quoted/escaped by renderers as needed.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Column returns the named column and whether it exists.
func (t TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// ColumnNames returns the column names in declaration order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
