// Package pipeline runs one load of the star schema.
//
// A run moves through fixed stages:
//
//	init -> users -> locations -> dates -> products -> facts -> report
//
// Each dimension stage streams its source query through a batch cursor into
// a resolver, one committed warehouse transaction per batch. The fact stage
// starts only after all four dimension key maps are complete. Any fatal
// error aborts the run; batches already committed stay committed, and
// re-running is safe because every write is an idempotent upsert.
//
// With parallel dimensions the four dimension stages run concurrently, each
// on its own source and warehouse handles, and the fact stage waits for all
// of them.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"salesdw/internal/batch"
	"salesdw/internal/conform"
	"salesdw/internal/metrics"
	"salesdw/internal/resolve"
	"salesdw/internal/schema"
	"salesdw/internal/source"
	"salesdw/internal/storage"
)

// Stage names a step of a run.
type Stage string

const (
	StageInit      Stage = "init"
	StageUsers     Stage = "users"
	StageLocations Stage = "locations"
	StageDates     Stage = "dates"
	StageProducts  Stage = "products"
	StageFacts     Stage = "facts"
	StageReport    Stage = "report"
)

// StageError is the fatal error of a run, tagged with the failing stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Source is the read handle a run needs; *source.Source implements it.
type Source interface {
	Stream(ctx context.Context, q source.Query) (*sql.Rows, error)
	Columns(ctx context.Context, table string) ([]string, error)
	Close() error
}

// Config is everything a run needs to know.
type Config struct {
	Job                string
	Source             source.Config
	Warehouse          storage.Config
	BatchSize          int
	ParallelDimensions bool
	EnsureSchema       bool
	StageTimeout       time.Duration
	BatchTimeout       time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(l *zap.Logger) Option { return func(r *Runner) { r.log = l } }

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option { return func(r *Runner) { r.metrics = m } }

// WithSourceOpener replaces source.Open.
func WithSourceOpener(fn func(context.Context, source.Config) (Source, error)) Option {
	return func(r *Runner) { r.openSource = fn }
}

// WithWarehouseOpener replaces storage.New.
func WithWarehouseOpener(fn func(context.Context, storage.Config) (storage.Warehouse, error)) Option {
	return func(r *Runner) { r.openWarehouse = fn }
}

// Runner executes runs. It holds no connections between runs.
type Runner struct {
	cfg           Config
	log           *zap.Logger
	metrics       *metrics.Recorder
	openSource    func(context.Context, source.Config) (Source, error)
	openWarehouse func(context.Context, storage.Config) (storage.Warehouse, error)

	mu sync.Mutex // guards the summary while dimension stages run in parallel
}

// New returns a Runner for cfg.
func New(cfg Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:           cfg,
		log:           zap.NewNop(),
		openSource:    openSource,
		openWarehouse: storage.New,
	}
	for _, fn := range opts {
		fn(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.New(cfg.Job, nil)
	}
	return r
}

func openSource(ctx context.Context, cfg source.Config) (Source, error) {
	s, err := source.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Run performs one load. The returned Summary covers everything done before
// any failure; on failure FailedStage is set and the error is a *StageError.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString(), Job: r.cfg.Job}
	log := r.log.With(zap.String("run_id", sum.RunID))
	log.Info("run start",
		zap.String("source", r.cfg.Source.Kind),
		zap.String("warehouse", r.cfg.Warehouse.Kind),
		zap.Int("batch_size", r.cfg.BatchSize),
		zap.Bool("parallel_dimensions", r.cfg.ParallelDimensions),
	)

	err := r.run(ctx, log, &sum)
	sum.ElapsedSeconds = time.Since(start).Seconds()

	var se *StageError
	if errors.As(err, &se) {
		sum.FailedStage = se.Stage
	}
	if err != nil {
		log.Error("run failed", zap.Error(err), zap.Any("summary", sum))
		return sum, err
	}
	_ = r.stage(ctx, log, StageReport, func(context.Context) error {
		r.report(&sum)
		log.Info("run done", zap.Any("summary", sum))
		return nil
	})
	return sum, nil
}

func (r *Runner) run(ctx context.Context, log *zap.Logger, sum *Summary) error {
	var (
		src Source
		wh  storage.Warehouse
	)
	defer func() {
		if src != nil {
			_ = src.Close()
		}
		if wh != nil {
			wh.Close()
		}
	}()

	err := r.stage(ctx, log, StageInit, func(ctx context.Context) error {
		var err error
		if src, err = r.openSource(ctx, r.cfg.Source); err != nil {
			return err
		}
		if wh, err = r.openWarehouse(ctx, r.cfg.Warehouse); err != nil {
			return err
		}
		if err := schema.Check(ctx, src, schema.Source); err != nil {
			return err
		}
		if r.cfg.EnsureSchema {
			return storage.EnsureSchema(ctx, r.cfg.Warehouse.Kind, wh, schema.Warehouse())
		}
		return nil
	})
	if err != nil {
		return err
	}

	maps := conform.Maps{
		Users:     resolve.NewKeyMap(),
		Locations: resolve.NewKeyMap(),
		Products:  resolve.NewKeyMap(),
		Dates:     resolve.NewKeyMap(),
	}
	dims := []dimStage{
		{StageUsers, func(ctx context.Context, src Source, wh storage.Warehouse) error {
			return runDimension(ctx, r, log, StageUsers, src, wh, source.Users, source.ScanUser, resolve.Users, maps.Users, &sum.Users)
		}},
		{StageLocations, func(ctx context.Context, src Source, wh storage.Warehouse) error {
			return runDimension(ctx, r, log, StageLocations, src, wh, source.Locations, source.ScanLocation, resolve.Locations, maps.Locations, &sum.Locations)
		}},
		{StageDates, func(ctx context.Context, src Source, wh storage.Warehouse) error {
			return runDimension(ctx, r, log, StageDates, src, wh, source.Dates, source.ScanDate, resolve.Dates, maps.Dates, &sum.Dates)
		}},
		{StageProducts, func(ctx context.Context, src Source, wh storage.Warehouse) error {
			return runDimension(ctx, r, log, StageProducts, src, wh, source.Products, source.ScanProduct, resolve.Products, maps.Products, &sum.Products)
		}},
	}

	if r.cfg.ParallelDimensions {
		err = r.runParallel(ctx, log, dims)
	} else {
		for _, d := range dims {
			if err = r.stage(ctx, log, d.name, func(ctx context.Context) error { return d.run(ctx, src, wh) }); err != nil {
				break
			}
		}
	}
	if err != nil {
		return err
	}

	return r.stage(ctx, log, StageFacts, func(ctx context.Context) error {
		return r.runFacts(ctx, log, src, wh, maps, &sum.Facts)
	})
}

type dimStage struct {
	name Stage
	run  func(context.Context, Source, storage.Warehouse) error
}

// runParallel runs every dimension stage on its own handles. The first
// failure cancels the others.
func (r *Runner) runParallel(ctx context.Context, log *zap.Logger, dims []dimStage) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range dims {
		g.Go(func() error {
			return r.stage(gctx, log, d.name, func(ctx context.Context) error {
				src, err := r.openSource(ctx, r.cfg.Source)
				if err != nil {
					return err
				}
				defer src.Close()
				wh, err := r.openWarehouse(ctx, r.cfg.Warehouse)
				if err != nil {
					return err
				}
				defer wh.Close()
				return d.run(ctx, src, wh)
			})
		})
	}
	return g.Wait()
}

// stage runs fn under the stage timeout and records its outcome.
func (r *Runner) stage(ctx context.Context, log *zap.Logger, name Stage, fn func(context.Context) error) error {
	if r.cfg.StageTimeout > 0 && name != StageReport {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.StageTimeout)
		defer cancel()
	}
	t0 := time.Now()
	log.Debug("stage start", zap.String("stage", string(name)))

	err := fn(ctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && r.cfg.StageTimeout > 0 {
		err = fmt.Errorf("exceeded stage timeout %s: %w", r.cfg.StageTimeout, err)
	}
	r.metrics.Step(string(name), err, time.Since(t0))
	if err != nil {
		return &StageError{Stage: name, Err: err}
	}
	log.Info("stage done", zap.String("stage", string(name)), zap.Duration("elapsed", time.Since(t0)))
	return nil
}

// runDimension drains one source query through a resolver into keys,
// publishing the running totals into out.
func runDimension[S, D any](
	ctx context.Context,
	r *Runner,
	log *zap.Logger,
	name Stage,
	src Source,
	wh storage.Warehouse,
	q source.Query,
	scan batch.ScanFunc[S],
	dim resolve.Dimension[S, D],
	keys *resolve.KeyMap,
	out *resolve.Stats,
) error {
	rows, err := src.Stream(ctx, q)
	if err != nil {
		return err
	}
	cur := batch.New(rows, r.cfg.BatchSize, scan)
	defer cur.Close()

	res := resolve.New(dim, wh, keys,
		resolve.WithLogger(log.With(zap.String("stage", string(name)))),
		resolve.WithBatchTimeout(r.cfg.BatchTimeout),
	)
	defer func() {
		st := res.Stats()
		r.mu.Lock()
		*out = st
		r.mu.Unlock()
	}()

	for chunk, err := range cur.All(ctx) {
		if err != nil {
			return err
		}
		if _, err := res.ResolveBatch(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runFacts(ctx context.Context, log *zap.Logger, src Source, wh storage.Warehouse, maps conform.Maps, out *conform.Stats) error {
	rows, err := src.Stream(ctx, source.Facts)
	if err != nil {
		return err
	}
	cur := batch.New(rows, r.cfg.BatchSize, source.ScanFact)
	defer cur.Close()

	c := conform.New(wh, maps,
		conform.WithLogger(log.With(zap.String("stage", string(StageFacts)))),
		conform.WithBatchTimeout(r.cfg.BatchTimeout),
	)
	defer func() { *out = c.Stats() }()

	for chunk, err := range cur.All(ctx) {
		if err != nil {
			return err
		}
		if err := c.ConformBatch(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// report publishes the run totals as metrics.
func (r *Runner) report(sum *Summary) {
	for entity, st := range map[string]resolve.Stats{
		schema.Users:    sum.Users,
		schema.Location: sum.Locations,
		schema.Date:     sum.Dates,
		schema.Products: sum.Products,
	} {
		r.metrics.Records(entity, metrics.KindRead, st.Read)
		r.metrics.Records(entity, metrics.KindCleaned, st.Cleaned)
		r.metrics.Records(entity, metrics.KindInserted, st.Inserted)
		r.metrics.Records(entity, metrics.KindUpdated, st.Updated)
		r.metrics.Batches(entity, st.Batches)
	}
	f := sum.Facts
	r.metrics.Records(schema.FactSales, metrics.KindRead, f.Read)
	r.metrics.Records(schema.FactSales, metrics.KindCleaned, f.Cleaned)
	r.metrics.Records(schema.FactSales, metrics.KindInserted, f.Inserted)
	r.metrics.Records(schema.FactSales, metrics.KindUpdated, f.Updated)
	r.metrics.Records(schema.FactSales, metrics.KindUnresolved, f.DroppedUnresolved.Total())
	r.metrics.Batches(schema.FactSales, f.Batches)
}
