// Package schema declares the two fixed schemas the loader works with: the
// star schema it writes and the operational schema it reads.
package schema

import (
	"salesdw/internal/ddl"
)

// Warehouse table names.
const (
	Users     = "Users"
	Location  = "Location"
	Products  = "Products"
	Date      = "Date"
	FactSales = "FactSales"
)

// keySize bounds indexed text columns on backends that need a length.
const keySize = 255

func id() ddl.ColumnDef { return ddl.ColumnDef{Name: "id", Type: ddl.TypeID, Identity: true} }

func text(name string) ddl.ColumnDef {
	return ddl.ColumnDef{Name: name, Type: ddl.TypeText}
}

func key(name string, typ string) ddl.ColumnDef {
	return ddl.ColumnDef{Name: name, Type: typ, Size: keySize, Unique: true}
}

func ref(name, table string) ddl.ColumnDef {
	return ddl.ColumnDef{Name: name, Type: ddl.TypeInt, References: &ddl.ForeignKey{Table: table, Column: "id"}}
}

// Warehouse returns the star schema in creation order: dimensions first, then
// the fact table that references them. Every dimension has a surrogate id and
// a UNIQUE business key.
func Warehouse() []ddl.TableDef {
	return []ddl.TableDef{
		{FQN: Users, Columns: []ddl.ColumnDef{
			id(),
			key("username", ddl.TypeText),
			text("firstName"),
			text("lastName"),
			{Name: "dateOfBirth", Type: ddl.TypeDate, Nullable: true},
			{Name: "gender", Type: ddl.TypeText, Size: 16, Nullable: true},
		}},
		{FQN: Location, Columns: []ddl.ColumnDef{
			id(),
			key("address1", ddl.TypeText),
			text("address2"),
			text("city"),
			text("country"),
			text("zipCode"),
		}},
		{FQN: Products, Columns: []ddl.ColumnDef{
			id(),
			text("category"),
			text("description"),
			key("name", ddl.TypeText),
			{Name: "price", Type: ddl.TypeMoney},
		}},
		{FQN: Date, Columns: []ddl.ColumnDef{
			id(),
			key("date", ddl.TypeDate),
			{Name: "year", Type: ddl.TypeInt},
			{Name: "quarter", Type: ddl.TypeInt},
			{Name: "month", Type: ddl.TypeInt},
			{Name: "day", Type: ddl.TypeInt},
			{Name: "weekday", Type: ddl.TypeText, Size: 16},
		}},
		{FQN: FactSales, Columns: []ddl.ColumnDef{
			id(),
			{Name: "quantity", Type: ddl.TypeInt},
			{Name: "revenue", Type: ddl.TypeMoney},
			key("orderNumber", ddl.TypeText),
			ref("UserId", Users),
			ref("ProductId", Products),
			ref("LocationId", Location),
			ref("DateId", Date),
		}},
	}
}
