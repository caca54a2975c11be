// Package model declares the typed records that flow between pipeline stages.
//
// Source records mirror the columns read from the operational store and keep
// nullable columns as sql.Null* values so that the cleaning stage can tell a
// missing value from an empty one. Dimension records are the cleaned,
// warehouse-shaped rows; they never carry a natural key.
package model

import (
	"database/sql"
	"time"
)

// UserSource is one row of the source users table.
type UserSource struct {
	ID          int64
	Username    sql.NullString
	FirstName   sql.NullString
	LastName    sql.NullString
	DateOfBirth sql.NullString
	Gender      sql.NullString
}

// LocationSource is the address part of a source users row. Its natural key
// is the user id.
type LocationSource struct {
	UserID   int64
	Address1 sql.NullString
	Address2 sql.NullString
	City     sql.NullString
	Country  sql.NullString
	ZipCode  sql.NullString
}

// ProductSource is one row of the source products table.
type ProductSource struct {
	ID          int64
	Category    sql.NullString
	Description sql.NullString
	Name        sql.NullString
	Price       sql.NullFloat64
}

// DateSource is the order timestamp used to build the Date dimension. Its
// natural key is the order id.
type DateSource struct {
	OrderID   int64
	CreatedAt sql.NullString
}

// FactSource is one order line joined with its order and product.
type FactSource struct {
	OrderID     int64
	OrderNumber sql.NullString
	UserID      sql.NullInt64
	ProductID   sql.NullInt64
	Quantity    sql.NullInt64
	UnitPrice   sql.NullFloat64
}

// User is a cleaned Users dimension row.
type User struct {
	Username    string
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Gender      string
}

// Location is a cleaned Location dimension row.
type Location struct {
	Address1 string
	Address2 string
	City     string
	Country  string
	ZipCode  string
}

// Product is a cleaned Products dimension row.
type Product struct {
	Category    string
	Description string
	Name        string
	Price       float64
}

// Date is a cleaned Date dimension row. Date is always midnight UTC.
type Date struct {
	Date    time.Time
	Year    int
	Quarter int
	Month   int
	Day     int
	Weekday string
}

// NewDate derives the calendar attributes of d.
func NewDate(d time.Time) Date {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return Date{
		Date:    d,
		Year:    d.Year(),
		Quarter: (int(d.Month())-1)/3 + 1,
		Month:   int(d.Month()),
		Day:     d.Day(),
		Weekday: d.Weekday().String(),
	}
}

// Fact is a cleaned sales fact. Before conforming, the four key fields hold
// natural keys (user id for both user and location, product id, order id for
// the date); after conforming they hold warehouse surrogate keys.
type Fact struct {
	OrderNumber string
	Quantity    int64
	Revenue     float64
	// Priced is false when the line came without a usable unit price, which
	// is what a line pointing at a missing product looks like. Revenue is
	// zero then.
	Priced      bool
	UserKey     int64
	LocationKey int64
	ProductKey  int64
	DateKey     int64
}

// DateLayout is the canonical text form of a calendar date.
const DateLayout = "2006-01-02"
