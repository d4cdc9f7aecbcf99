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

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	// Success case.
	RecordStep("orders", "parse", nil, 2*time.Second)

	// Failure case.
	err := errors.New("boom")
	RecordStep("inventory", "fetch", err, 1500*time.Millisecond)

	if len(fb.callsCounters) != 2 {
		t.Fatalf("expected 2 counter calls, got %d", len(fb.callsCounters))
	}
	if len(fb.callsHistograms) != 2 {
		t.Fatalf("expected 2 histogram calls, got %d", len(fb.callsHistograms))
	}

	// First call: success.
	cc0 := fb.callsCounters[0]
	if cc0.name != "dq_step_total" || cc0.delta != 1 {
		t.Fatalf("counter[0] = %#v; want name=dq_step_total, delta=1", cc0)
	}
	if got := cc0.labels["job"]; got != "orders" {
		t.Fatalf("counter[0].labels[job]=%q; want %q", got, "orders")
	}
	if got := cc0.labels["step"]; got != "parse" {
		t.Fatalf("counter[0].labels[step]=%q; want %q", got, "parse")
	}
	if got := cc0.labels["status"]; got != "success" {
		t.Fatalf("counter[0].labels[status]=%q; want %q", got, "success")
	}

	h0 := fb.callsHistograms[0]
	if h0.name != "dq_step_duration_seconds" {
		t.Fatalf("hist[0].name=%q; want dq_step_duration_seconds", h0.name)
	}
	if h0.value < 2.0-0.001 || h0.value > 2.0+0.001 {
		t.Fatalf("hist[0].value=%v; want ~2.0", h0.value)
	}

	// Second call: failure.
	cc1 := fb.callsCounters[1]
	if cc1.labels["job"] != "inventory" || cc1.labels["step"] != "fetch" {
		t.Fatalf("counter[1] labels job/step = %v; want inventory/fetch", cc1.labels)
	}
	if cc1.labels["status"] != "failure" {
		t.Fatalf("counter[1].labels[status]=%q; want %q", cc1.labels["status"], "failure")
	}

	h1 := fb.callsHistograms[1]
	if h1.value < 1.5-0.001 || h1.value > 1.5+0.001 {
		t.Fatalf("hist[1].value=%v; want ~1.5", h1.value)
	}
}

func TestRecordRowsAndRuns(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	RecordRows("orders", "valid", 3)
	RecordRows("orders", "valid", 0) // should be ignored
	RecordRows("orders", "invalid", 5)
	RecordRun("orders", false)
	RecordRun("orders", true)

	if len(fb.callsCounters) != 4 {
		t.Fatalf("expected 4 counter calls, got %d", len(fb.callsCounters))
	}

	// 1) valid rows
	c0 := fb.callsCounters[0]
	if c0.name != "dq_rows_total" || c0.delta != 3 {
		t.Fatalf("counter[0] = %#v; want name=dq_rows_total, delta=3", c0)
	}
	if c0.labels["job"] != "orders" || c0.labels["kind"] != "valid" {
		t.Fatalf("counter[0] labels = %v; want job=orders, kind=valid", c0.labels)
	}

	// 2) invalid rows
	c1 := fb.callsCounters[1]
	if c1.name != "dq_rows_total" || c1.delta != 5 {
		t.Fatalf("counter[1] = %#v; want name=dq_rows_total, delta=5", c1)
	}
	if c1.labels["kind"] != "invalid" {
		t.Fatalf("counter[1] labels = %v; want kind=invalid", c1.labels)
	}

	// 3) failed run
	c2 := fb.callsCounters[2]
	if c2.name != "dq_runs_total" || c2.delta != 1 {
		t.Fatalf("counter[2] = %#v; want name=dq_runs_total, delta=1", c2)
	}
	if c2.labels["result"] != "fail" {
		t.Fatalf("counter[2].labels[result]=%q; want %q", c2.labels["result"], "fail")
	}

	// 4) passing run
	c3 := fb.callsCounters[3]
	if c3.labels["result"] != "pass" {
		t.Fatalf("counter[3].labels[result]=%q; want %q", c3.labels["result"], "pass")
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)

	if backend != fb {
		t.Fatal("SetBackend did not replace global backend")
	}

	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	// SetBackend(nil) should not nil out the backend.
	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}
}
