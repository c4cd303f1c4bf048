package replaycache

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

type cache[R any] struct {
	name    string
	source  Source[R]
	augment Augmenter[R]
	combine Combiner[R]
	concat  int

	poll        time.Duration
	joinTimeout time.Duration
	clock       clockwork.Clock
	log         Logger
	hooks       Hooks

	seed    uint64
	store   *slotStore[R]
	fetched atomic.Uint64

	// producer lifecycle
	cancel   context.CancelFunc
	exited   chan struct{}
	closeMu  sync.Mutex
	closed   bool
	closeErr error
}

func newCache[R any](opts Options[R]) (*cache[R], error) {
	if err := validateOptions(&opts); err != nil {
		return nil, err
	}

	c := &cache[R]{
		name:    opts.Name,
		source:  opts.Source,
		augment: opts.Augment,
		combine: opts.Combine,
		concat:  max(opts.ConcatSize, 1),
		exited:  make(chan struct{}),
	}
	if c.name == "" {
		c.name = defaultName()
	}
	if c.augment == nil {
		c.augment = AugmentFunc[R](func(r R) ([]R, error) { return []R{r}, nil })
	}

	c.poll = coalesce(opts.PollInterval, defaultPollInterval)
	c.joinTimeout = coalesce(opts.JoinTimeout, defaultJoinTimeout)
	c.clock = coalesce[clockwork.Clock](opts.Clock, clockwork.NewRealClock())
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.log = coalesce[Logger](opts.Logger, NopLogger{}).With(Fields{"cache": c.name})

	capacity := coalesce(opts.Capacity, defaultCapacity)
	c.seed = opts.Seed
	if c.seed == 0 {
		c.seed = rand.Uint64()
	}
	c.store = newSlotStore[R](capacity, c.seed)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	p := newProducer(c, c.seed, opts.FetchLimiter)
	go p.run(ctx)

	c.log.Debug("replay cache started", Fields{
		"capacity": capacity,
		"concat":   c.concat,
		"seed":     c.seed,
	})
	return c, nil
}

func (c *cache[R]) Name() string { return c.name }

func (c *cache[R]) Len() int {
	if l, ok := c.source.(Lener); ok {
		return l.Len()
	}
	return 0
}

func (c *cache[R]) Stats() Stats {
	s := c.store.snapshot()
	s.Fetched = c.fetched.Load()
	return s
}

// await blocks until changed fires, one poll interval passes or ctx ends.
// Callers re-check their predicate afterwards either way.
func (c *cache[R]) await(ctx context.Context, changed <-chan struct{}) error {
	t := c.clock.NewTimer(c.poll)
	defer t.Stop()
	select {
	case <-changed:
		return nil
	case <-t.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// phase brackets one timed section for the hooks.
type phase[R any] struct {
	c     *cache[R]
	name  Phase
	start time.Time
}

func (c *cache[R]) startPhase(p Phase) phase[R] {
	c.hooks.PhaseStart(c.name, p)
	return phase[R]{c: c, name: p, start: c.clock.Now()}
}

func (p phase[R]) end(err error) {
	p.c.hooks.PhaseEnd(p.c.name, p.name, p.c.clock.Since(p.start), err)
}
