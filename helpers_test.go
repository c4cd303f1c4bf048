package replaycache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testPoll = 5 * time.Millisecond

// counter yields 0, 1, 2, ... forever.
type counter struct{ n atomic.Int64 }

func (c *counter) Next(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int(c.n.Add(1) - 1), nil
}

// feed yields the given values once, then blocks until ctx is canceled.
type feed struct {
	mu   sync.Mutex
	vals []int
}

func newFeed(vals ...int) *feed { return &feed{vals: vals} }

func (f *feed) Next(ctx context.Context) (int, error) {
	f.mu.Lock()
	if len(f.vals) > 0 {
		v := f.vals[0]
		f.vals = f.vals[1:]
		f.mu.Unlock()
		return v, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return 0, ctx.Err()
}

func (f *feed) Len() int { return 6 }

// stuck ignores ctx and blocks until release is closed.
type stuck struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newStuck() *stuck {
	return &stuck{entered: make(chan struct{}), release: make(chan struct{})}
}

func (s *stuck) Next(context.Context) (int, error) {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return 1, nil
}

func sum(rs []int) ([]int, error) {
	t := 0
	for _, r := range rs {
		t += r
	}
	return []int{t}, nil
}

func startInts(t *testing.T, opts Options[int]) *cache[int] {
	t.Helper()
	if opts.PollInterval == 0 {
		opts.PollInterval = testPoll
	}
	c, err := Start[int](opts)
	require.NoError(t, err)
	impl, ok := c.(*cache[int])
	require.True(t, ok, "unexpected concrete type %T", c)
	return impl
}

func closeOK(t *testing.T, c Cache[int]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Close(ctx))
}

func ctxT(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// recHooks records every callback.
type recHooks struct {
	mu sync.Mutex
	hookCounts
}

type hookCounts struct {
	starts       map[Phase]int
	ends         map[Phase]int
	endErrs      map[Phase]int
	failed       []error
	backpressure int
	partial      [][2]int
	timeouts     []time.Duration
}

func newRecHooks() *recHooks {
	return &recHooks{hookCounts: hookCounts{starts: map[Phase]int{}, ends: map[Phase]int{}, endErrs: map[Phase]int{}}}
}

func (h *recHooks) PhaseStart(_ string, p Phase) {
	h.mu.Lock()
	h.starts[p]++
	h.mu.Unlock()
}

func (h *recHooks) PhaseEnd(_ string, p Phase, _ time.Duration, err error) {
	h.mu.Lock()
	h.ends[p]++
	if err != nil {
		h.endErrs[p]++
	}
	h.mu.Unlock()
}

func (h *recHooks) ProducerFailed(_ string, err error) {
	h.mu.Lock()
	h.failed = append(h.failed, err)
	h.mu.Unlock()
}

func (h *recHooks) Backpressure(string, int) {
	h.mu.Lock()
	h.backpressure++
	h.mu.Unlock()
}

func (h *recHooks) PartialBatch(_ string, got, want int) {
	h.mu.Lock()
	h.partial = append(h.partial, [2]int{got, want})
	h.mu.Unlock()
}

func (h *recHooks) ShutdownTimeout(_ string, d time.Duration) {
	h.mu.Lock()
	h.timeouts = append(h.timeouts, d)
	h.mu.Unlock()
}

func (h *recHooks) snapshot() hookCounts {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := hookCounts{
		starts:       map[Phase]int{},
		ends:         map[Phase]int{},
		endErrs:      map[Phase]int{},
		failed:       append([]error(nil), h.failed...),
		backpressure: h.backpressure,
		partial:      append([][2]int(nil), h.partial...),
		timeouts:     append([]time.Duration(nil), h.timeouts...),
	}
	for k, v := range h.starts {
		cp.starts[k] = v
	}
	for k, v := range h.ends {
		cp.ends[k] = v
	}
	for k, v := range h.endErrs {
		cp.endErrs[k] = v
	}
	return cp
}

// gated ignores ctx, blocks until release is closed, then returns (val, err)
// on every call.
type gated struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	val     int
	err     error
}

func newGated(val int, err error) *gated {
	return &gated{entered: make(chan struct{}), release: make(chan struct{}), val: val, err: err}
}

func (g *gated) Next(context.Context) (int, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.val, g.err
}
