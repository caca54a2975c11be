package builtin

import (
	"strings"

	"github.com/zeebo/xxh3"
)

const (
	PolicyKeepFirst = "keep-first"
	PolicyKeepLast  = "keep-last"
)

// DeDup collapses duplicate records by a business key and chooses a winner
// according to a policy:
//
//   - "keep-first" : keep the earliest occurrence in the batch (default)
//   - "keep-last"  : keep the latest occurrence in the batch
//
// This runs in-memory on a single batch. It removes intra-batch duplicates
// before the upsert so a batch never touches the same warehouse row twice;
// the warehouse UNIQUE constraint still guarantees global uniqueness.
//
// Keys are hashed with xxh3 (128-bit) so the seen-set stays small for wide
// composite keys. Records with an empty key are passed through unchanged.
type DeDup[T any] struct {
	// Key returns the record's business key; "" means unkeyed.
	Key func(T) string

	// Policy is PolicyKeepFirst (default) or PolicyKeepLast.
	Policy string
}

// Apply returns a new slice with one record per key. Winners keep their
// relative input order; for keep-last a winner takes the position of its
// last occurrence.
func (d DeDup[T]) Apply(in []T) []T {
	if len(in) == 0 || d.Key == nil {
		return in
	}

	keepLast := strings.EqualFold(strings.TrimSpace(d.Policy), PolicyKeepLast)

	winner := make(map[xxh3.Uint128]int, len(in))
	keys := make([]xxh3.Uint128, len(in))
	keyed := make([]bool, len(in))
	for i, rec := range in {
		k := d.Key(rec)
		if k == "" {
			continue
		}
		h := xxh3.HashString128(k)
		keys[i], keyed[i] = h, true
		if _, seen := winner[h]; !seen || keepLast {
			winner[h] = i
		}
	}

	out := make([]T, 0, len(winner))
	for i, rec := range in {
		if !keyed[i] || winner[keys[i]] == i {
			out = append(out, rec)
		}
	}
	return out
}

// Key joins parts with a unit separator into a composite key.
func Key(parts ...string) string {
	return strings.Join(parts, "\x1f")
}
