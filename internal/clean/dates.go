package clean

import (
	"salesdw/internal/model"
	"salesdw/internal/transformer/builtin"
)

// DateStage cleans order timestamps into Date rows keyed by calendar date.
var DateStage = Stage[model.DateSource, model.Date]{
	NatKey:    func(d model.DateSource) int64 { return d.OrderID },
	Normalize: NormalizeDate,
	Key:       DateKey,
}

// Dates cleans a batch of order timestamps.
func Dates(raw []model.DateSource) Batch[model.Date] { return DateStage.Apply(raw) }

// DateKey is the Date business key, formatted as model.DateLayout.
func DateKey(d model.Date) string { return d.Date.Format(model.DateLayout) }

// NormalizeDate parses the order timestamp down to its calendar date.
func NormalizeDate(s model.DateSource) (model.Date, bool) {
	if !builtin.NonBlank(s.CreatedAt) {
		return model.Date{}, false
	}
	d, ok := builtin.ParseDate(s.CreatedAt.String)
	if !ok {
		return model.Date{}, false
	}
	return model.NewDate(d), true
}
