// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    PhaseEvery:        100, // sample phase logs: ~every 100th
//	    BackpressureEvery: 10,
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	c, _ := replaycache.Start(replaycache.Options[Sample]{
//	    Source: src,
//	    Hooks:  hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/replaycache"
)

// Hooks moves every callback onto a small worker pool so a slow sink never
// stalls the producer or a consumer. When the queue is full, events are dropped
// and counted.
type Hooks struct {
	inner   replaycache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed against sends on a closed q
	closed  bool
	dropped atomic.Uint64
}

var _ replaycache.Hooks = (*Hooks)(nil)

func New(inner replaycache.Hooks, workers, qlen int) *Hooks {
	if inner == nil {
		inner = replaycache.NopHooks{}
	}
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) PhaseStart(c string, p replaycache.Phase) {
	h.try(func() { h.inner.PhaseStart(c, p) })
}
func (h *Hooks) PhaseEnd(c string, p replaycache.Phase, d time.Duration, err error) {
	h.try(func() { h.inner.PhaseEnd(c, p, d, err) })
}
func (h *Hooks) ProducerFailed(c string, err error) { h.try(func() { h.inner.ProducerFailed(c, err) }) }
func (h *Hooks) Backpressure(c string, n int)       { h.try(func() { h.inner.Backpressure(c, n) }) }
func (h *Hooks) PartialBatch(c string, got, want int) {
	h.try(func() { h.inner.PartialBatch(c, got, want) })
}
func (h *Hooks) ShutdownTimeout(c string, budget time.Duration) {
	h.try(func() { h.inner.ShutdownTimeout(c, budget) })
}
