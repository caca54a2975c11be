// Package resolve assigns warehouse surrogate keys to dimension rows.
//
// A Resolver takes one raw source batch at a time, cleans it, upserts the
// distinct rows in a single warehouse transaction and joins the returned
// (surrogate key, business key) pairs back onto every surviving source row.
// The resulting natural -> surrogate pairs accumulate in a KeyMap that the
// fact conformer reads once the dimension is fully loaded.
//
// A business key is written at most once per run, by the first batch that
// carries it. Later batches reuse its surrogate key without touching the
// warehouse row, so the first valid row in source order wins whatever the
// batch size.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"salesdw/internal/clean"
	"salesdw/internal/storage"
)

// ErrKeyNotReturned means the warehouse did not return a surrogate key for a
// business key that was just upserted.
var ErrKeyNotReturned = errors.New("business key not returned by warehouse")

// Dimension describes how one dimension is cleaned and written.
type Dimension[S, D any] struct {
	Table           string
	Columns         []string
	ConflictColumns []string
	UpdateColumns   []string

	Clean func([]S) clean.Batch[D]
	// Values returns one value per column, in Columns order.
	Values func(D) []any
	// BusinessKey must render the key exactly as the warehouse returns it.
	BusinessKey func(D) string
}

// Spec returns the upsert spec of the dimension.
func (d Dimension[S, D]) Spec() storage.UpsertSpec {
	return storage.UpsertSpec{
		Table:           d.Table,
		Columns:         d.Columns,
		ConflictColumns: d.ConflictColumns,
		UpdateColumns:   d.UpdateColumns,
	}
}

// BatchResult counts one resolved batch.
type BatchResult struct {
	Read     int
	Cleaned  int
	Distinct int
	// Known counts distinct keys already written by an earlier batch.
	Known    int
	Inserted int
	Updated  int
}

// Stats are the running totals of a Resolver.
type Stats struct {
	Read        int64 `json:"read"`
	Cleaned     int64 `json:"cleaned"`
	Inserted    int64 `json:"inserted"`
	Updated     int64 `json:"updated"`
	MappingSize int   `json:"mapping_size"`
	Batches     int64 `json:"batches"`
}

// BatchError is a fatal failure of one batch. FirstKey and LastKey are the
// business keys at the batch boundary.
type BatchError struct {
	Table    string
	Batch    int64
	FirstKey string
	LastKey  string
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s batch %d [%q..%q]: %v", e.Table, e.Batch, e.FirstKey, e.LastKey, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Option configures a Resolver.
type Option func(*options)

type options struct {
	log          *zap.Logger
	batchTimeout time.Duration
}

// WithLogger sets the logger used for per-batch progress.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }

// WithBatchTimeout bounds each warehouse call. Zero means no bound.
func WithBatchTimeout(d time.Duration) Option { return func(o *options) { o.batchTimeout = d } }

// Resolver loads one dimension batch by batch.
type Resolver[S, D any] struct {
	dim    Dimension[S, D]
	wh     storage.Warehouse
	keys   *KeyMap
	loaded map[string]int64 // business key -> surrogate key, this run
	opts   options
	stats  Stats
	start  time.Time
}

// New returns a Resolver writing dim through wh. A nil keys gets a fresh map.
func New[S, D any](dim Dimension[S, D], wh storage.Warehouse, keys *KeyMap, opts ...Option) *Resolver[S, D] {
	o := options{log: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	if keys == nil {
		keys = NewKeyMap()
	}
	return &Resolver[S, D]{dim: dim, wh: wh, keys: keys, loaded: map[string]int64{}, opts: o, start: time.Now()}
}

// Keys returns the natural -> surrogate map built so far.
func (r *Resolver[S, D]) Keys() *KeyMap { return r.keys }

// Stats returns the running totals.
func (r *Resolver[S, D]) Stats() Stats {
	s := r.stats
	s.MappingSize = r.keys.Len()
	return s
}

// ResolveBatch cleans raw, upserts the distinct rows whose key no earlier
// batch wrote, and maps every surviving natural key to its surrogate key.
// Rows dropped by cleaning are counted, not reported as errors.
func (r *Resolver[S, D]) ResolveBatch(ctx context.Context, raw []S) (BatchResult, error) {
	r.stats.Batches++
	n := r.stats.Batches

	b := r.dim.Clean(raw)
	res := BatchResult{Read: len(raw), Cleaned: len(b.Members), Distinct: len(b.Rows)}
	r.stats.Read += int64(res.Read)
	r.stats.Cleaned += int64(res.Cleaned)

	fresh := make([]D, 0, len(b.Rows))
	for _, d := range b.Rows {
		if _, ok := r.loaded[r.dim.BusinessKey(d)]; !ok {
			fresh = append(fresh, d)
		}
	}
	res.Known = len(b.Rows) - len(fresh)
	if len(fresh) == 0 {
		r.mapMembers(b.Members)
		return res, nil
	}

	rows := make([][]any, len(fresh))
	for i, d := range fresh {
		rows[i] = r.dim.Values(d)
	}
	fail := func(err error) (BatchResult, error) {
		return res, &BatchError{
			Table:    r.dim.Table,
			Batch:    n,
			FirstKey: r.dim.BusinessKey(fresh[0]),
			LastKey:  r.dim.BusinessKey(fresh[len(fresh)-1]),
			Err:      err,
		}
	}

	callCtx := ctx
	if r.opts.batchTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.opts.batchTimeout)
		defer cancel()
	}
	t0 := time.Now()
	pairs, err := r.wh.UpsertReturning(callCtx, r.dim.Spec(), rows)
	if err != nil {
		return fail(err)
	}

	ids := make(map[string]int64, len(pairs))
	for _, kp := range pairs {
		ids[kp.Key] = kp.ID
		if kp.Inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	for _, d := range fresh {
		if _, ok := ids[r.dim.BusinessKey(d)]; !ok {
			return fail(fmt.Errorf("%w: %q", ErrKeyNotReturned, r.dim.BusinessKey(d)))
		}
	}
	for _, d := range fresh {
		k := r.dim.BusinessKey(d)
		r.loaded[k] = ids[k]
	}
	r.mapMembers(b.Members)

	r.stats.Inserted += int64(res.Inserted)
	r.stats.Updated += int64(res.Updated)
	r.opts.log.Info("batch",
		zap.String("table", r.dim.Table),
		zap.Int64("batch", n),
		zap.Int("rows", res.Read),
		zap.Int("cleaned", res.Cleaned),
		zap.Int("known", res.Known),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int64("total", r.stats.Read),
		zap.Duration("upsert", time.Since(t0)),
		zap.Duration("elapsed", time.Since(r.start)),
	)
	return res, nil
}

func (r *Resolver[S, D]) mapMembers(members []clean.Member) {
	for _, m := range members {
		r.keys.Set(m.NatKey, r.loaded[m.Key])
	}
}
