// Package transformer defines the batch transformer contract shared by the
// cleaning stages. A transformer takes a batch of typed records and returns
// the surviving records; transformers never add rows.
package transformer

// Transformer rewrites or filters one batch of records.
type Transformer[T any] interface{ Apply([]T) []T }

// Func adapts a plain function to Transformer.
type Func[T any] func([]T) []T

// Apply implements Transformer.
func (f Func[T]) Apply(in []T) []T { return f(in) }

// Chain is an ordered list of transformers.
type Chain[T any] []Transformer[T]

// Apply runs each transformer in order, feeding the output of one into the
// next. An empty chain returns its input.
func (c Chain[T]) Apply(in []T) []T {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
