package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
)

// BasicProvider is a concurrency-safe in-memory Provider.
// Instruments are created on first use and reused for the same name.
type BasicProvider struct {
	mu         sync.RWMutex
	counters   map[string]*BasicCounter
	updowns    map[string]*BasicUpDownCounter
	histograms map[string]*BasicHistogram
	meta       map[string]InstrumentConfig
}

// NewBasicProvider constructs a new BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		counters:   make(map[string]*BasicCounter),
		updowns:    make(map[string]*BasicUpDownCounter),
		histograms: make(map[string]*BasicHistogram),
		meta:       make(map[string]InstrumentConfig),
	}
}

// lookup returns the instrument registered under name in m, creating it with
// newFn under the write lock when absent.
func lookup[T any](p *BasicProvider, m map[string]T, name string, opts []InstrumentOption, newFn func() T) T {
	p.mu.RLock()
	v, ok := m[name]
	p.mu.RUnlock()
	if ok {
		return v
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok = m[name]; ok {
		return v
	}
	p.meta[name] = applyOptions(opts)
	v = newFn()
	m[name] = v
	return v
}

// Counter returns the monotonic counter registered under name.
func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	return lookup(p, p.counters, name, opts, func() *BasicCounter { return &BasicCounter{} })
}

// UpDownCounter returns the up/down counter registered under name.
func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	return lookup(p, p.updowns, name, opts, func() *BasicUpDownCounter { return &BasicUpDownCounter{} })
}

// Histogram returns the histogram registered under name.
func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	return lookup(p, p.histograms, name, opts, func() *BasicHistogram { return &BasicHistogram{} })
}

// Describe returns the metadata recorded when the instrument was created.
func (p *BasicProvider) Describe(name string) (InstrumentConfig, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.meta[name]
	return c, ok
}

// Sample is one instrument's value in a Snapshot.
type Sample struct {
	Name  string
	Kind  string // "counter", "updown" or "histogram"
	Value int64
	Hist  HistSnapshot
}

// Snapshot returns every instrument's current value sorted by name.
func (p *BasicProvider) Snapshot() []Sample {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Sample, 0, len(p.counters)+len(p.updowns)+len(p.histograms))
	for n, c := range p.counters {
		out = append(out, Sample{Name: n, Kind: "counter", Value: c.Snapshot()})
	}
	for n, u := range p.updowns {
		out = append(out, Sample{Name: n, Kind: "updown", Value: u.Snapshot()})
	}
	for n, h := range p.histograms {
		out = append(out, Sample{Name: n, Kind: "histogram", Hist: h.Snapshot()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BasicCounter is a thread-safe monotonic counter.
type BasicCounter struct {
	val atomic.Int64
}

func (c *BasicCounter) Add(n int64) { c.val.Add(n) }

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a thread-safe up/down counter.
type BasicUpDownCounter struct {
	val atomic.Int64
}

func (u *BasicUpDownCounter) Add(n int64) { u.val.Add(n) }

// Snapshot returns the current value.
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram tracks count, sum, min and max. It keeps no buckets.
type BasicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

// Record adds a measurement to the histogram.
func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 || v < h.min {
		h.min = v
	}
	if h.count == 0 || v > h.max {
		h.max = v
	}
	h.count++
	h.sum += v
}

// HistSnapshot is an immutable snapshot of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

// Snapshot returns a copy of the histogram state.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	s := HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	h.mu.Unlock()
	if s.Count > 0 {
		s.Mean = s.Sum / float64(s.Count)
	}
	return s
}
