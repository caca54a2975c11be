package resolve

import (
	"salesdw/internal/clean"
	"salesdw/internal/model"
	"salesdw/internal/schema"
)

// nullable stores an empty string as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Users writes the Users dimension.
var Users = Dimension[model.UserSource, model.User]{
	Table:           schema.Users,
	Columns:         []string{"username", "firstName", "lastName", "dateOfBirth", "gender"},
	ConflictColumns: []string{"username"},
	UpdateColumns:   []string{"firstName", "lastName", "dateOfBirth", "gender"},
	Clean:           clean.Users,
	Values: func(u model.User) []any {
		var dob any
		if u.DateOfBirth != nil {
			dob = *u.DateOfBirth
		}
		return []any{u.Username, u.FirstName, u.LastName, dob, nullable(u.Gender)}
	},
	BusinessKey: clean.UserKey,
}

// Locations writes the Location dimension.
var Locations = Dimension[model.LocationSource, model.Location]{
	Table:           schema.Location,
	Columns:         []string{"address1", "address2", "city", "country", "zipCode"},
	ConflictColumns: []string{"address1"},
	UpdateColumns:   []string{"address2", "city", "country", "zipCode"},
	Clean:           clean.Locations,
	Values: func(l model.Location) []any {
		return []any{l.Address1, l.Address2, l.City, l.Country, l.ZipCode}
	},
	BusinessKey: clean.LocationKey,
}

// Products writes the Products dimension.
var Products = Dimension[model.ProductSource, model.Product]{
	Table:           schema.Products,
	Columns:         []string{"category", "description", "name", "price"},
	ConflictColumns: []string{"name"},
	UpdateColumns:   []string{"category", "description", "price"},
	Clean:           clean.Products,
	Values: func(p model.Product) []any {
		return []any{p.Category, p.Description, p.Name, p.Price}
	},
	BusinessKey: clean.ProductKey,
}

// Dates writes the Date dimension. The calendar attributes are derived from
// the key, so a conflict only needs to touch the row to return its id.
var Dates = Dimension[model.DateSource, model.Date]{
	Table:           schema.Date,
	Columns:         []string{"date", "year", "quarter", "month", "day", "weekday"},
	ConflictColumns: []string{"date"},
	Clean:           clean.Dates,
	Values: func(d model.Date) []any {
		return []any{d.Date, d.Year, d.Quarter, d.Month, d.Day, d.Weekday}
	},
	BusinessKey: clean.DateKey,
}
