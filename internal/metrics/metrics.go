// Package metrics records operational metrics of a load run behind a small,
// backend-agnostic interface.
//
// A Recorder is built per run from a Backend and handed to the pipeline
// explicitly. A nil Backend records nothing, so instrumentation is always
// safe to call. Concrete systems (Prometheus Pushgateway, DogStatsD) live in
// subpackages and are the only places that import their client libraries.
package metrics

import "time"

// Metric names.
const (
	StepTotal       = "etl_step_total"
	StepDuration    = "etl_step_duration_seconds"
	RecordsTotal    = "etl_records_total"
	BatchesTotal    = "etl_batches_total"
	defaultJobLabel = "salesdw"
)

// Record kinds reported under RecordsTotal.
const (
	KindRead       = "read"
	KindCleaned    = "cleaned"
	KindInserted   = "inserted"
	KindUpdated    = "updated"
	KindUnresolved = "unresolved"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

// Nop is a Backend that discards everything.
var Nop Backend = nopBackend{}

// Recorder tags every metric with the job name.
type Recorder struct {
	job string
	b   Backend
}

// New returns a Recorder for job. A nil b records nothing.
func New(job string, b Backend) *Recorder {
	if b == nil {
		b = Nop
	}
	if job == "" {
		job = defaultJobLabel
	}
	return &Recorder{job: job, b: b}
}

// Job reports the job label.
func (r *Recorder) Job() string { return r.job }

// Step records one stage execution: a success/failure counter plus its
// duration.
func (r *Recorder) Step(stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": r.job, "step": stage, "status": status}
	r.b.IncCounter(StepTotal, 1, lbls)
	r.b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// Records adds delta rows of kind for entity. Non-positive deltas are
// ignored.
func (r *Recorder) Records(entity, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	r.b.IncCounter(RecordsTotal, float64(delta), Labels{"job": r.job, "entity": entity, "kind": kind})
}

// Batches adds delta upserted batches for entity.
func (r *Recorder) Batches(entity string, delta int64) {
	if delta <= 0 {
		return
	}
	r.b.IncCounter(BatchesTotal, float64(delta), Labels{"job": r.job, "entity": entity})
}

// Flush delegates to the backend.
func (r *Recorder) Flush() error { return r.b.Flush() }
