package metrics

import (
	"sync"
	"sync/atomic"
)

// Basic is an in-memory Provider for tests and small programs.
// Instruments are created on first use and reused by name.
type Basic struct {
	mu         sync.RWMutex
	counters   map[string]*BasicCounter
	histograms map[string]*BasicHistogram
	meta       map[string]Meta
}

var _ Provider = (*Basic)(nil)

func NewBasic() *Basic {
	return &Basic{
		counters:   make(map[string]*BasicCounter),
		histograms: make(map[string]*BasicHistogram),
		meta:       make(map[string]Meta),
	}
}

// lookup returns m[name], creating it with mk under the write lock if absent.
func lookup[T any](b *Basic, m map[string]*T, name string, opts []Option, mk func() *T) *T {
	b.mu.RLock()
	v, ok := m[name]
	b.mu.RUnlock()
	if ok {
		return v
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok = m[name]; ok {
		return v
	}
	v = mk()
	m[name] = v
	b.meta[name] = buildMeta(opts)
	return v
}

func (b *Basic) Counter(name string, opts ...Option) Counter {
	return lookup(b, b.counters, name, opts, func() *BasicCounter { return &BasicCounter{} })
}

// UpDownCounter shares the counter namespace; a name is either kind, not both.
func (b *Basic) UpDownCounter(name string, opts ...Option) UpDownCounter {
	return lookup(b, b.counters, name, opts, func() *BasicCounter { return &BasicCounter{} })
}

func (b *Basic) Histogram(name string, opts ...Option) Histogram {
	return lookup(b, b.histograms, name, opts, func() *BasicHistogram { return &BasicHistogram{} })
}

// Value returns the current value of a counter, 0 if it was never created.
func (b *Basic) Value(name string) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if c, ok := b.counters[name]; ok {
		return c.Value()
	}
	return 0
}

// Hist returns a histogram snapshot; ok=false if it was never created.
func (b *Basic) Hist(name string) (HistSnapshot, bool) {
	b.mu.RLock()
	h, ok := b.histograms[name]
	b.mu.RUnlock()
	if !ok {
		return HistSnapshot{}, false
	}
	return h.Snapshot(), true
}

// Describe returns the metadata recorded for name.
func (b *Basic) Describe(name string) Meta {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.meta[name]
}

type BasicCounter struct{ v atomic.Int64 }

func (c *BasicCounter) Add(n int64)  { c.v.Add(n) }
func (c *BasicCounter) Value() int64 { return c.v.Load() }

// BasicHistogram tracks count, sum, min and max; no buckets.
type BasicHistogram struct {
	mu       sync.Mutex
	count    int64
	sum      float64
	min, max float64
}

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

type HistSnapshot struct {
	Count         int64
	Sum, Min, Max float64
}

func (s HistSnapshot) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
}
