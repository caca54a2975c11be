package clean

import (
	"salesdw/internal/model"
	"salesdw/internal/transformer/builtin"
)

var locationRequired = builtin.Require[model.LocationSource]{Fields: []builtin.Field[model.LocationSource]{
	{Name: "address1", Present: func(l model.LocationSource) bool { return builtin.NonBlank(l.Address1) }},
	{Name: "address2", Present: func(l model.LocationSource) bool { return builtin.NonBlank(l.Address2) }},
	{Name: "city", Present: func(l model.LocationSource) bool { return builtin.NonBlank(l.City) }},
	{Name: "country", Present: func(l model.LocationSource) bool { return builtin.NonBlank(l.Country) }},
	{Name: "zipCode", Present: func(l model.LocationSource) bool { return builtin.NonBlank(l.ZipCode) }},
}}

// LocationStage cleans user addresses into Location rows keyed by address1.
var LocationStage = Stage[model.LocationSource, model.Location]{
	NatKey:    func(l model.LocationSource) int64 { return l.UserID },
	Normalize: NormalizeLocation,
	Key:       LocationKey,
}

// Locations cleans a batch of source addresses.
func Locations(raw []model.LocationSource) Batch[model.Location] { return LocationStage.Apply(raw) }

// LocationKey is the Location business key.
func LocationKey(l model.Location) string { return l.Address1 }

// NormalizeLocation validates and normalizes one address. Postal codes are
// upper-cased; everything else is title-cased.
func NormalizeLocation(s model.LocationSource) (model.Location, bool) {
	if _, missing := locationRequired.Missing(s); missing {
		return model.Location{}, false
	}
	return model.Location{
		Address1: builtin.TitleCase(s.Address1.String),
		Address2: builtin.TitleCase(s.Address2.String),
		City:     builtin.TitleCase(s.City.String),
		Country:  builtin.TitleCase(s.Country.String),
		ZipCode:  builtin.Upper(s.ZipCode.String),
	}, true
}
