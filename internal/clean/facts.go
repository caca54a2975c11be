package clean

import (
	"math"

	"salesdw/internal/model"
	"salesdw/internal/transformer/builtin"
)

var factRequired = builtin.Require[model.FactSource]{Fields: []builtin.Field[model.FactSource]{
	{Name: "orderNumber", Present: func(f model.FactSource) bool { return builtin.NonBlank(f.OrderNumber) }},
	{Name: "UserId", Present: func(f model.FactSource) bool { return f.UserID.Valid }},
	{Name: "ProductId", Present: func(f model.FactSource) bool { return f.ProductID.Valid }},
	{Name: "quantity", Present: func(f model.FactSource) bool { return f.Quantity.Valid }},
}}

// FactStage cleans order lines into facts keyed by order number. The key
// fields of the result still hold natural keys.
var FactStage = Stage[model.FactSource, model.Fact]{
	NatKey:    func(f model.FactSource) int64 { return f.OrderID },
	Normalize: NormalizeFact,
	Key:       FactKey,
}

// Facts cleans a batch of order lines.
func Facts(raw []model.FactSource) Batch[model.Fact] { return FactStage.Apply(raw) }

// FactKey is the FactSales business key.
func FactKey(f model.Fact) string { return f.OrderNumber }

// NormalizeFact validates one order line, normalizes its order number and
// computes revenue. The unit price is first rounded up to the cent, the same
// value the Products dimension stores, so revenue always equals quantity
// times the dimension price.
//
// A line without a usable price is kept unpriced: its product did not make
// it into the Products dimension, and the conformer counts it as a products
// gap.
func NormalizeFact(s model.FactSource) (model.Fact, bool) {
	if _, missing := factRequired.Missing(s); missing {
		return model.Fact{}, false
	}
	f := model.Fact{
		OrderNumber: builtin.TitleCase(s.OrderNumber.String),
		Quantity:    s.Quantity.Int64,
		UserKey:     s.UserID.Int64,
		LocationKey: s.UserID.Int64,
		ProductKey:  s.ProductID.Int64,
		DateKey:     s.OrderID,
	}
	if p := s.UnitPrice; p.Valid && !math.IsNaN(p.Float64) && !math.IsInf(p.Float64, 0) {
		f.Revenue = Revenue(s.Quantity.Int64, builtin.CeilCents(p.Float64))
		f.Priced = true
	}
	return f, true
}

// Revenue is quantity times unit price, rounded up to the cent.
func Revenue(quantity int64, unitPrice float64) float64 {
	return builtin.CeilCents(float64(quantity) * builtin.CeilCents(unitPrice))
}
