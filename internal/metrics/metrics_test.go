package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	callsCounters   []counterCall
	callsHistograms []histCall
	flushCount      int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsCounters = append(f.callsCounters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsHistograms = append(f.callsHistograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func TestStep_SuccessAndFailure(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{}
	r := New("nightly", fb)

	r.Step("users", nil, 2*time.Second)
	r.Step("facts", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.callsCounters) != 2 || len(fb.callsHistograms) != 2 {
		t.Fatalf("calls = %d counters, %d histograms; want 2, 2", len(fb.callsCounters), len(fb.callsHistograms))
	}

	cc0 := fb.callsCounters[0]
	if cc0.name != StepTotal || cc0.delta != 1 {
		t.Fatalf("counter[0] = %#v; want name=%s, delta=1", cc0, StepTotal)
	}
	if cc0.labels["job"] != "nightly" || cc0.labels["step"] != "users" || cc0.labels["status"] != "success" {
		t.Fatalf("counter[0].labels = %v", cc0.labels)
	}
	if got := fb.callsCounters[1].labels["status"]; got != "failure" {
		t.Fatalf("counter[1].labels[status] = %q; want failure", got)
	}

	hc1 := fb.callsHistograms[1]
	if hc1.name != StepDuration || hc1.value != 1.5 {
		t.Fatalf("histogram[1] = %#v; want %s=1.5", hc1, StepDuration)
	}
}

func TestRecords_IgnoresNonPositive(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{}
	r := New("", fb)

	r.Records("Users", KindRead, 0)
	r.Records("Users", KindRead, -3)
	r.Records("Users", KindInserted, 7)
	r.Batches("Users", 0)
	r.Batches("Users", 2)

	if len(fb.callsCounters) != 2 {
		t.Fatalf("expected 2 counter calls, got %d", len(fb.callsCounters))
	}
	rec := fb.callsCounters[0]
	if rec.name != RecordsTotal || rec.delta != 7 {
		t.Fatalf("records call = %#v", rec)
	}
	if rec.labels["job"] != "salesdw" || rec.labels["entity"] != "Users" || rec.labels["kind"] != KindInserted {
		t.Fatalf("records labels = %v", rec.labels)
	}
	if b := fb.callsCounters[1]; b.name != BatchesTotal || b.delta != 2 {
		t.Fatalf("batches call = %#v", b)
	}
}

func TestNilBackendIsNop(t *testing.T) {
	t.Parallel()

	r := New("job", nil)
	r.Step("users", nil, time.Second)
	r.Records("Users", KindRead, 1)
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush() = %v; want nil", err)
	}
}

func TestFlushDelegates(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{}
	r := New("job", fb)
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("flushCount = %d; want 1", fb.flushCount)
	}
}
