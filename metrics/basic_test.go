package metrics

import (
	"reflect"
	"runtime"
	"sync"
	"testing"
)

func TestBasicProvider_Counter_ReusedAndAccumulates(t *testing.T) {
	p := NewBasicProvider()

	c1 := p.Counter("items_submitted")
	c2 := p.Counter("items_submitted")

	if reflect.ValueOf(c1).Pointer() != reflect.ValueOf(c2).Pointer() {
		t.Fatalf("expected same counter instance for same name")
	}

	bc, ok := c1.(*BasicCounter)
	if !ok {
		t.Fatalf("expected *BasicCounter, got %T", c1)
	}

	c1.Add(3)
	c2.Add(2)
	if got := bc.Snapshot(); got != 5 {
		t.Fatalf("counter value = %d; want 5", got)
	}

	if reflect.ValueOf(p.Counter("other")).Pointer() == reflect.ValueOf(c1).Pointer() {
		t.Fatalf("expected different counter instance for different name")
	}
}

func TestBasicProvider_UpDownCounter_Moves(t *testing.T) {
	p := NewBasicProvider()
	u := p.UpDownCounter("queue_depth")
	bu := u.(*BasicUpDownCounter)

	u.Add(+3)
	u.Add(-1)
	p.UpDownCounter("queue_depth").Add(+10)
	if got := bu.Snapshot(); got != 12 {
		t.Fatalf("updown value = %d; want 12", got)
	}
}

func TestBasicProvider_Histogram_RecordsStats(t *testing.T) {
	p := NewBasicProvider()
	h := p.Histogram("duration_seconds")
	bh := h.(*BasicHistogram)

	if s := bh.Snapshot(); s.Count != 0 || s.Mean != 0 {
		t.Fatalf("empty histogram snapshot = %+v; want zero", s)
	}

	h.Record(0.1)
	h.Record(0.3)
	h.Record(0.2)
	s := bh.Snapshot()
	if s.Count != 3 {
		t.Fatalf("count = %d; want 3", s.Count)
	}
	if s.Min != 0.1 || s.Max != 0.3 {
		t.Fatalf("min/max = (%v,%v); want (0.1,0.3)", s.Min, s.Max)
	}
	if s.Mean < 0.19 || s.Mean > 0.21 {
		t.Fatalf("mean = %v; want ~0.2", s.Mean)
	}
}

func TestBasicProvider_DescribeKeepsFirstOptions(t *testing.T) {
	p := NewBasicProvider()
	p.Counter("c", WithDescription("first"), WithUnit("1"))
	p.Counter("c", WithDescription("second"))

	cfg, ok := p.Describe("c")
	if !ok {
		t.Fatalf("expected metadata for registered instrument")
	}
	if cfg.Description != "first" || cfg.Unit != "1" {
		t.Fatalf("metadata = %+v; want first registration", cfg)
	}
	if _, ok := p.Describe("missing"); ok {
		t.Fatalf("expected no metadata for unknown instrument")
	}
}

func TestBasicProvider_SnapshotSortedByName(t *testing.T) {
	p := NewBasicProvider()
	p.Histogram("c_hist").Record(2)
	p.Counter("a_counter").Add(4)
	p.UpDownCounter("b_updown").Add(-2)

	got := p.Snapshot()
	if len(got) != 3 {
		t.Fatalf("snapshot len = %d; want 3", len(got))
	}
	want := []struct {
		name string
		kind string
	}{{"a_counter", "counter"}, {"b_updown", "updown"}, {"c_hist", "histogram"}}
	for i, w := range want {
		if got[i].Name != w.name || got[i].Kind != w.kind {
			t.Fatalf("sample %d = %s/%s; want %s/%s", i, got[i].Name, got[i].Kind, w.name, w.kind)
		}
	}
	if got[0].Value != 4 || got[1].Value != -2 || got[2].Hist.Count != 1 {
		t.Fatalf("unexpected snapshot values: %+v", got)
	}
}

func TestBasicProvider_Concurrent_GetSameInstrument(t *testing.T) {
	p := NewBasicProvider()
	n := 50
	ptrs := make([]uintptr, n)
	wg := sync.WaitGroup{}
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			ptrs[idx] = reflect.ValueOf(p.Counter("shared")).Pointer()
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if ptrs[i] != ptrs[0] {
			t.Fatalf("expected same pointer for all retrieved counters; mismatch at %d", i)
		}
	}
}

func TestBasicProvider_Concurrent_HistogramRecord(t *testing.T) {
	p := NewBasicProvider()
	h := p.Histogram("latency")
	bh := h.(*BasicHistogram)

	workers := runtime.NumCPU() * 2
	iters := 500
	wg := sync.WaitGroup{}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(base int) {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				h.Record(float64((base%10)+i%10) / 100.0)
			}
		}(w)
	}
	wg.Wait()
	s := bh.Snapshot()
	if s.Count != int64(workers*iters) {
		t.Fatalf("hist count = %d; want %d", s.Count, workers*iters)
	}
	if s.Min < 0.0 || s.Min > 0.09 || s.Max < 0.0 || s.Max > 0.19 {
		t.Fatalf("min/max out of expected range: (%v,%v)", s.Min, s.Max)
	}
}

func TestNoopProvider_Discards(t *testing.T) {
	var p Provider = NewNoopProvider()
	p.Counter("x").Add(1)
	p.UpDownCounter("y").Add(-1)
	p.Histogram("z").Record(1.5)
}
