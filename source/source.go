// Package source provides ready-made upstreams for a replay cache.
//
// All sources here are meant to be pulled by a single producer goroutine but
// are safe for concurrent use anyway.
package source

import (
	"context"
	"errors"
	"sync"

	"github.com/unkn0wn-root/replaycache"
)

var (
	ErrEmpty        = errors.New("source: no records")
	ErrExhausted    = errors.New("source: upstream exhausted")
	ErrShardMissing = errors.New("source: shard missing")
)

// Func adapts a plain function that ignores cancellation.
func Func[R any](f func() (R, error)) replaycache.Source[R] {
	return replaycache.SourceFunc[R](func(context.Context) (R, error) { return f() })
}

// Slice replays a fixed list forever, in order. The cache does the shuffling.
type Slice[R any] struct {
	mu   sync.Mutex
	recs []R
	i    int
}

var (
	_ replaycache.Source[int] = (*Slice[int])(nil)
	_ replaycache.Lener       = (*Slice[int])(nil)
)

// NewSlice copies recs.
func NewSlice[R any](recs []R) *Slice[R] {
	return &Slice[R]{recs: append([]R(nil), recs...)}
}

func (s *Slice[R]) Next(ctx context.Context) (R, error) {
	var zero R
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recs) == 0 {
		return zero, ErrEmpty
	}
	r := s.recs[s.i]
	s.i = (s.i + 1) % len(s.recs)
	return r, nil
}

func (s *Slice[R]) Len() int { return len(s.recs) }
