package replaycache

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// PCG stream selectors; the same seed yields unrelated producer and pick sequences.
const (
	producerStream = 0x9e3779b97f4a7c15
	pickStream     = 0xbf58476d1ce4e5b9
)

// slotStore is the only state shared between the producer and consumers:
// an unordered, capacity-bounded slice of records plus one terminal failure.
//
// Every mutation closes and replaces changed, which is how waiters are woken.
// Waiters grab changed under mu together with their predicate check, so a
// wakeup between the check and the wait cannot be lost.
type slotStore[R any] struct {
	mu       sync.Mutex
	items    []R
	capacity int
	failure  error
	pick     *rand.Rand // guarded by mu
	changed  chan struct{}

	// cancellation flag; read under mu by push and take, written once by Close
	stopped atomic.Bool

	pushed  uint64
	popped  uint64
	cleared uint64
}

func newSlotStore[R any](capacity int, seed uint64) *slotStore[R] {
	return &slotStore[R]{
		items:    make([]R, 0, capacity),
		capacity: capacity,
		pick:     rand.New(rand.NewPCG(seed, pickStream)),
		changed:  make(chan struct{}),
	}
}

// broadcast wakes every waiter. Callers must hold mu.
func (s *slotStore[R]) broadcast() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// wake is broadcast for callers not holding mu.
func (s *slotStore[R]) wake() {
	s.mu.Lock()
	s.broadcast()
	s.mu.Unlock()
}

func (s *slotStore[R]) tryPush(r R) bool {
	ok, _ := s.pushOrWatch(r)
	return ok
}

// pushOrWatch inserts r if there is room and the store is not stopped.
// Otherwise it returns the channel that is closed on the next state change.
// A nil channel with ok=false means the store is stopped.
func (s *slotStore[R]) pushOrWatch(r R) (ok bool, changed <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped.Load() || s.failure != nil {
		return false, nil
	}
	if len(s.items) >= s.capacity {
		return false, s.changed
	}
	s.items = append(s.items, r)
	s.pushed++
	s.broadcast()
	return true, nil
}

func (s *slotStore[R]) tryPopRandom() (R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popLocked()
}

// popLocked removes a uniformly chosen record by swapping it with the last one.
func (s *slotStore[R]) popLocked() (R, bool) {
	var zero R
	n := len(s.items)
	if n == 0 {
		return zero, false
	}
	i := s.pick.IntN(n)
	r := s.items[i]
	s.items[i] = s.items[n-1]
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	s.popped++
	s.broadcast()
	return r, true
}

// takeResult is what one consumer probe saw.
type takeResult[R any] struct {
	record  R
	ok      bool
	failure error
	stopped bool
	changed <-chan struct{}
}

// takeOrWatch checks, in order, the stored failure, the cancellation flag and
// occupancy; it pops a record when one is available.
func (s *slotStore[R]) takeOrWatch() takeResult[R] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return takeResult[R]{failure: s.failure}
	}
	if s.stopped.Load() {
		return takeResult[R]{stopped: true}
	}
	if r, ok := s.popLocked(); ok {
		return takeResult[R]{record: r, ok: true}
	}
	return takeResult[R]{changed: s.changed}
}

func (s *slotStore[R]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// clear drops every buffered record and returns how many were dropped.
func (s *slotStore[R]) clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	clear(s.items)
	s.items = s.items[:0]
	s.cleared += uint64(n)
	s.broadcast()
	return n
}

// setFailure stores err unless a failure is already stored or the store is
// stopped. First one wins; a producer outliving Close cannot change the outcome.
func (s *slotStore[R]) setFailure(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil || s.stopped.Load() {
		return false
	}
	s.failure = err
	s.broadcast()
	return true
}

func (s *slotStore[R]) getFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// stop raises the cancellation flag and wakes every waiter.
// It reports whether this call performed the transition.
func (s *slotStore[R]) stop() bool {
	if !s.stopped.CompareAndSwap(false, true) {
		return false
	}
	s.wake()
	return true
}

func (s *slotStore[R]) snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Capacity: s.capacity,
		Buffered: len(s.items),
		Pushed:   s.pushed,
		Popped:   s.popped,
		Cleared:  s.cleared,
		Failed:   s.failure != nil,
		Stopped:  s.stopped.Load(),
	}
}
