package replaycache

import (
	"context"
	"iter"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// Source is the upstream the producer pulls from. It is treated as infinite:
// the cache never ends it, and any error it returns is terminal for the cache.
// ctx is canceled by Close; sources that honor it let Close join promptly.
type Source[R any] interface {
	Next(ctx context.Context) (R, error)
}

// Lener is an optional Source capability reporting its (nominal) size.
type Lener interface {
	Len() int
}

// SourceFunc adapts a function to Source.
type SourceFunc[R any] func(ctx context.Context) (R, error)

func (f SourceFunc[R]) Next(ctx context.Context) (R, error) { return f(ctx) }

// Augmenter fans one upstream record out into one or more cache entries.
type Augmenter[R any] interface {
	Augment(R) ([]R, error)
}

// AugmentFunc adapts a function to Augmenter.
type AugmentFunc[R any] func(R) ([]R, error)

func (f AugmentFunc[R]) Augment(r R) ([]R, error) { return f(r) }

// Combiner merges a group of cache entries. Only the first returned record is
// handed to the caller; the rest are discarded.
type Combiner[R any] interface {
	Combine([]R) ([]R, error)
}

// CombineFunc adapts a function to Combiner.
type CombineFunc[R any] func([]R) ([]R, error)

func (f CombineFunc[R]) Combine(rs []R) ([]R, error) { return f(rs) }

// Cache is a bounded shuffle buffer fed by a background producer.
type Cache[R any] interface {
	// Next blocks until a record is available and returns a uniformly random one.
	// It returns ErrStopped once the cache is closed, the stored producer failure
	// once one occurred (on every call), or ctx.Err() when ctx ends first.
	Next(ctx context.Context) (R, error)

	// All iterates Next until ErrStopped. Any other error is yielded once, last.
	All(ctx context.Context) iter.Seq2[R, error]

	// Close stops the producer, drops buffered records and reports the stored
	// producer failure (or a shutdown timeout). Idempotent, safe from any goroutine.
	Close(ctx context.Context) error

	// Len passes through to the Source when it implements Lener, else 0.
	// The upstream is conceptually infinite, so this is informational only.
	Len() int

	Name() string
	Stats() Stats
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Capacity int
	Buffered int
	Fetched  uint64 // upstream records pulled
	Pushed   uint64 // entries inserted into the store
	Popped   uint64 // entries handed to consumers (before combining)
	Cleared  uint64 // entries dropped by Close
	Failed   bool
	Stopped  bool
}

// Options configure a cache. Source is required; Combine is required when
// ConcatSize > 1. Everything else has a default.
type Options[R any] struct {
	Name    string       // "" => "replay-<random>"
	Source  Source[R]    // required
	Augment Augmenter[R] // nil => identity fan-out of 1
	Combine Combiner[R]  // required when ConcatSize > 1

	Capacity   int    // 0 => 1024
	ConcatSize int    // <= 1 => single mode
	Seed       uint64 // seeds producer shuffle and consumer pick; 0 => random per instance

	PollInterval time.Duration // bounded wait slice for both roles; 0 => 50ms
	JoinTimeout  time.Duration // Close join budget; 0 => 5s

	FetchLimiter *rate.Limiter   // optional upstream throttle
	Clock        clockwork.Clock // nil => real clock
	Logger       Logger          // nil => NopLogger
	Hooks        Hooks           // nil => NopHooks
}

// Start validates opts, creates the store and launches the producer.
func Start[R any](opts Options[R]) (Cache[R], error) {
	return newCache[R](opts)
}

// New is an alias of Start.
func New[R any](opts Options[R]) (Cache[R], error) {
	return Start[R](opts)
}
