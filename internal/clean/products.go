package clean

import (
	"math"

	"salesdw/internal/model"
	"salesdw/internal/transformer/builtin"
)

var productRequired = builtin.Require[model.ProductSource]{Fields: []builtin.Field[model.ProductSource]{
	{Name: "category", Present: func(p model.ProductSource) bool { return builtin.NonBlank(p.Category) }},
	{Name: "description", Present: func(p model.ProductSource) bool { return builtin.NonBlank(p.Description) }},
	{Name: "name", Present: func(p model.ProductSource) bool { return builtin.NonBlank(p.Name) }},
	{Name: "price", Present: func(p model.ProductSource) bool {
		return p.Price.Valid && !math.IsNaN(p.Price.Float64) && !math.IsInf(p.Price.Float64, 0)
	}},
}}

// ProductStage cleans source products into Products rows keyed by name.
var ProductStage = Stage[model.ProductSource, model.Product]{
	NatKey:    func(p model.ProductSource) int64 { return p.ID },
	Normalize: NormalizeProduct,
	Key:       ProductKey,
}

// Products cleans a batch of source products.
func Products(raw []model.ProductSource) Batch[model.Product] { return ProductStage.Apply(raw) }

// ProductKey is the Products business key.
func ProductKey(p model.Product) string { return p.Name }

// NormalizeProduct validates and normalizes one product. Categories go
// through the alias table and fall back to title case; prices are rounded up
// to the cent.
func NormalizeProduct(s model.ProductSource) (model.Product, bool) {
	if _, missing := productRequired.Missing(s); missing {
		return model.Product{}, false
	}
	return model.Product{
		Category:    builtin.CategoryAliases.Or(s.Category.String, builtin.TitleCase),
		Description: builtin.TitleCase(s.Description.String),
		Name:        builtin.TitleCase(s.Name.String),
		Price:       builtin.CeilCents(s.Price.Float64),
	}, true
}
