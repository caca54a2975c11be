// Package clean holds the per-entity cleaning stages. Each stage is a pure
// function from a raw source batch to a cleaned batch:
//
//  1. rows missing a required field, or with an unparseable date, are dropped
//     whole (no partial record is kept);
//  2. surviving rows are normalized (trim, casing, alias tables, cents);
//  3. the normalized rows are de-duplicated on the business key, first
//     occurrence wins.
//
// Normalizing before de-duplicating means two source rows that differ only in
// casing or whitespace collapse onto one dimension row. Resolvers write each
// business key once per run, so across batches the first valid row in source
// order wins too. The stage also records, for every surviving source row, the
// pair (natural key, business key) so the resolver can map each natural key
// to its surrogate key.
package clean

import (
	"salesdw/internal/transformer"
	"salesdw/internal/transformer/builtin"
)

// Member ties one surviving source row to its normalized business key.
type Member struct {
	NatKey int64
	Key    string
}

// Batch is the output of a cleaning stage.
type Batch[D any] struct {
	// Rows are the de-duplicated records to upsert, in first-seen order.
	Rows []D
	// Members has one entry per surviving source row, in source order.
	Members []Member
	// Dropped counts source rows rejected by validation.
	Dropped int
}

// Stage describes how one entity is cleaned.
type Stage[S, D any] struct {
	NatKey    func(S) int64
	Normalize func(S) (D, bool)
	Key       func(D) string
}

// Apply runs the stage over raw.
func (st Stage[S, D]) Apply(raw []S) Batch[D] { return st.ApplyThen(raw, nil) }

// ApplyThen is Apply with an extra per-row step between normalization and
// de-duplication. Rows rejected by then are left out of Rows and Members but
// are not counted as Dropped; the caller accounts for them.
func (st Stage[S, D]) ApplyThen(raw []S, then func(D) (D, bool)) Batch[D] {
	out := Batch[D]{
		Rows:    make([]D, 0, len(raw)),
		Members: make([]Member, 0, len(raw)),
	}
	for _, s := range raw {
		d, ok := st.Normalize(s)
		if !ok {
			out.Dropped++
			continue
		}
		if then != nil {
			if d, ok = then(d); !ok {
				continue
			}
		}
		out.Rows = append(out.Rows, d)
		out.Members = append(out.Members, Member{NatKey: st.NatKey(s), Key: st.Key(d)})
	}
	out.Rows = st.dedup().Apply(out.Rows)
	return out
}

func (st Stage[S, D]) dedup() transformer.Transformer[D] {
	return builtin.DeDup[D]{Key: st.Key, Policy: builtin.PolicyKeepFirst}
}
