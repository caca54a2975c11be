package source

import (
	"salesdw/internal/batch"
	"salesdw/internal/model"
)

// Query is a named extraction query rendered for a dialect.
//
// Every query orders by the natural key, so "first occurrence of a business
// key wins" means the lowest natural key wins no matter how the source
// collates the business column.
type Query struct {
	Name string
	SQL  func(Dialect) string
}

// Users reads the user attributes of the users table.
var Users = Query{Name: "users", SQL: func(d Dialect) string {
	return "SELECT " + d.Cols("", "id", "username", "firstName", "lastName", "dateOfBirth", "gender") +
		" FROM " + d.Quote("users") +
		" ORDER BY " + d.Quote("id")
}}

// Locations reads the address columns of the users table.
var Locations = Query{Name: "locations", SQL: func(d Dialect) string {
	return "SELECT " + d.Cols("", "id", "address1", "address2", "city", "country", "zipCode") +
		" FROM " + d.Quote("users") +
		" ORDER BY " + d.Quote("id")
}}

// Products reads the products table.
var Products = Query{Name: "products", SQL: func(d Dialect) string {
	return "SELECT " + d.Cols("", "id", "category", "description", "name", "price") +
		" FROM " + d.Quote("products") +
		" ORDER BY " + d.Quote("id")
}}

// Dates reads order timestamps.
var Dates = Query{Name: "dates", SQL: func(d Dialect) string {
	return "SELECT " + d.Cols("", "id", "createdAt") +
		" FROM " + d.Quote("orders") +
		" ORDER BY " + d.Quote("id")
}}

// Facts reads order lines joined with their order and product price, order
// by order and line by line. Lines whose product no longer exists come back
// with a NULL price.
var Facts = Query{Name: "facts", SQL: func(d Dialect) string {
	return "SELECT " + d.Cols("o", "id", "orderNumber", "UserId") +
		", " + d.Cols("oi", "ProductId", "quantity") +
		", " + d.Cols("p", "price") +
		" FROM " + d.Quote("orderitems") + " oi" +
		" JOIN " + d.Quote("orders") + " o ON oi." + d.Quote("OrderId") + " = o." + d.Quote("id") +
		" LEFT JOIN " + d.Quote("products") + " p ON oi." + d.Quote("ProductId") + " = p." + d.Quote("id") +
		" ORDER BY " + d.Cols("o", "id") + ", " + d.Cols("oi", "id")
}}

// ScanUser scans a row of Users.
func ScanUser(s batch.Scanner) (model.UserSource, error) {
	var u model.UserSource
	err := s.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.DateOfBirth, &u.Gender)
	return u, err
}

// ScanLocation scans a row of Locations.
func ScanLocation(s batch.Scanner) (model.LocationSource, error) {
	var l model.LocationSource
	err := s.Scan(&l.UserID, &l.Address1, &l.Address2, &l.City, &l.Country, &l.ZipCode)
	return l, err
}

// ScanProduct scans a row of Products.
func ScanProduct(s batch.Scanner) (model.ProductSource, error) {
	var p model.ProductSource
	err := s.Scan(&p.ID, &p.Category, &p.Description, &p.Name, &p.Price)
	return p, err
}

// ScanDate scans a row of Dates.
func ScanDate(s batch.Scanner) (model.DateSource, error) {
	var d model.DateSource
	err := s.Scan(&d.OrderID, &d.CreatedAt)
	return d, err
}

// ScanFact scans a row of Facts.
func ScanFact(s batch.Scanner) (model.FactSource, error) {
	var f model.FactSource
	err := s.Scan(&f.OrderID, &f.OrderNumber, &f.UserID, &f.ProductID, &f.Quantity, &f.UnitPrice)
	return f, err
}
