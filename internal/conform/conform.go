// Package conform turns cleaned facts into FactSales rows by swapping each
// natural key for the surrogate key of its dimension.
//
// A fact is written only when all four dimension keys resolve. Facts with a
// missing key are dropped and counted per dimension; one fact may count
// against several dimensions. An unpriced line counts as a products gap.
//
// Facts are conformed before they are de-duplicated on the order number, and
// an order number is written at most once per run, so an order's first
// resolvable line in source order is the one loaded.
package conform

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"salesdw/internal/clean"
	"salesdw/internal/model"
	"salesdw/internal/resolve"
	"salesdw/internal/schema"
	"salesdw/internal/storage"
)

// Maps are the completed dimension key maps.
type Maps struct {
	Users     *resolve.KeyMap
	Locations *resolve.KeyMap
	Products  *resolve.KeyMap
	Dates     *resolve.KeyMap
}

// Gaps counts facts dropped for an unresolved key, per dimension.
type Gaps struct {
	Users     int64 `json:"users"`
	Locations int64 `json:"locations"`
	Products  int64 `json:"products"`
	Dates     int64 `json:"dates"`
}

// Total is the sum over all dimensions.
func (g Gaps) Total() int64 { return g.Users + g.Locations + g.Products + g.Dates }

// Stats are the running totals of a Conformer.
type Stats struct {
	Read              int64 `json:"read"`
	Cleaned           int64 `json:"cleaned"`
	DroppedUnresolved Gaps  `json:"dropped_unresolved"`
	Inserted          int64 `json:"inserted"`
	Updated           int64 `json:"updated"`
	Batches           int64 `json:"batches"`
}

// Spec is the FactSales upsert: keyed on the order number, every other
// column is overwritten on conflict.
var Spec = storage.UpsertSpec{
	Table:           schema.FactSales,
	Columns:         []string{"orderNumber", "quantity", "revenue", "UserId", "ProductId", "LocationId", "DateId"},
	ConflictColumns: []string{"orderNumber"},
	UpdateColumns:   []string{"quantity", "revenue", "UserId", "ProductId", "LocationId", "DateId"},
}

// Option configures a Conformer.
type Option func(*Conformer)

// WithLogger sets the logger used for per-batch progress.
func WithLogger(l *zap.Logger) Option { return func(c *Conformer) { c.log = l } }

// WithBatchTimeout bounds each warehouse call. Zero means no bound.
func WithBatchTimeout(d time.Duration) Option { return func(c *Conformer) { c.batchTimeout = d } }

// Conformer loads FactSales batch by batch.
type Conformer struct {
	wh           storage.Warehouse
	maps         Maps
	log          *zap.Logger
	batchTimeout time.Duration
	stats        Stats
	loaded       map[string]struct{} // order numbers written this run
}

// New returns a Conformer. maps must be complete: every dimension stage has
// finished.
func New(wh storage.Warehouse, maps Maps, opts ...Option) *Conformer {
	c := &Conformer{wh: wh, maps: maps, log: zap.NewNop(), loaded: map[string]struct{}{}}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

// Stats returns the running totals.
func (c *Conformer) Stats() Stats { return c.stats }

// Conform replaces the natural keys of f with surrogate keys. It reports
// false, and counts the gap, when any key is unresolved or f is unpriced.
func (c *Conformer) Conform(f model.Fact) (model.Fact, bool) {
	ok := true
	lookup := func(m *resolve.KeyMap, nat int64, gap *int64) int64 {
		id, found := m.Get(nat)
		if !found {
			*gap++
			ok = false
		}
		return id
	}
	g := &c.stats.DroppedUnresolved
	out := f
	out.UserKey = lookup(c.maps.Users, f.UserKey, &g.Users)
	out.LocationKey = lookup(c.maps.Locations, f.LocationKey, &g.Locations)
	if f.Priced {
		out.ProductKey = lookup(c.maps.Products, f.ProductKey, &g.Products)
	} else {
		g.Products++
		ok = false
	}
	out.DateKey = lookup(c.maps.Dates, f.DateKey, &g.Dates)
	return out, ok
}

// ConformBatch cleans raw, conforms the facts and upserts the resolvable
// ones whose order number no earlier batch wrote, in one warehouse
// transaction.
func (c *Conformer) ConformBatch(ctx context.Context, raw []model.FactSource) error {
	c.stats.Batches++
	n := c.stats.Batches

	b := clean.FactStage.ApplyThen(raw, c.Conform)
	c.stats.Read += int64(len(raw))
	c.stats.Cleaned += int64(len(raw) - b.Dropped)

	rows := make([][]any, 0, len(b.Rows))
	for _, f := range b.Rows {
		if _, ok := c.loaded[f.OrderNumber]; ok {
			continue
		}
		rows = append(rows, []any{f.OrderNumber, f.Quantity, f.Revenue, f.UserKey, f.ProductKey, f.LocationKey, f.DateKey})
	}
	if len(rows) == 0 {
		return nil
	}

	if c.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.batchTimeout)
		defer cancel()
	}
	t0 := time.Now()
	pairs, err := c.wh.UpsertReturning(ctx, Spec, rows)
	if err != nil {
		return &resolve.BatchError{
			Table:    Spec.Table,
			Batch:    n,
			FirstKey: fmt.Sprint(rows[0][0]),
			LastKey:  fmt.Sprint(rows[len(rows)-1][0]),
			Err:      err,
		}
	}
	var inserted, updated int64
	for _, kp := range pairs {
		if kp.Inserted {
			inserted++
		} else {
			updated++
		}
	}
	c.stats.Inserted += inserted
	c.stats.Updated += updated
	for _, r := range rows {
		c.loaded[r[0].(string)] = struct{}{}
	}

	c.log.Info("batch",
		zap.String("table", Spec.Table),
		zap.Int64("batch", n),
		zap.Int("rows", len(raw)),
		zap.Int("loaded", len(rows)),
		zap.Int64("inserted", inserted),
		zap.Int64("unresolved", c.stats.DroppedUnresolved.Total()),
		zap.Int64("total", c.stats.Read),
		zap.Duration("upsert", time.Since(t0)),
	)
	return nil
}
