package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/unkn0wn-root/replaycache"
	"github.com/unkn0wn-root/replaycache/codec"
	"github.com/unkn0wn-root/replaycache/internal/wire"
	"github.com/unkn0wn-root/replaycache/provider"
)

// Shards replays records stored as framed blobs in a provider.Provider.
// Keys are visited in order and the list wraps around; each shard is fetched
// and decoded when the previous one is used up. A missing or corrupt shard is
// an upstream failure.
type Shards[R any] struct {
	p     provider.Provider
	codec codec.Codec[R]
	keys  []string

	mu      sync.Mutex
	next    int // index into keys of the shard to load next
	pending []R
	loaded  uint64
}

var (
	_ replaycache.Source[int] = (*Shards[int])(nil)
	_ replaycache.Lener       = (*Shards[int])(nil)
)

func NewShards[R any](p provider.Provider, c codec.Codec[R], keys []string) (*Shards[R], error) {
	if p == nil {
		return nil, errors.New("source: nil provider")
	}
	if c == nil {
		return nil, errors.New("source: nil codec")
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no shard keys", ErrEmpty)
	}
	return &Shards[R]{p: p, codec: c, keys: append([]string(nil), keys...)}, nil
}

func (s *Shards[R]) Next(ctx context.Context) (R, error) {
	var zero R
	s.mu.Lock()
	defer s.mu.Unlock()

	// an all-empty key list would otherwise spin forever
	for tries := 0; len(s.pending) == 0; tries++ {
		if tries == len(s.keys) {
			return zero, fmt.Errorf("%w: every shard is empty", ErrEmpty)
		}
		if err := s.load(ctx); err != nil {
			return zero, err
		}
	}
	r := s.pending[0]
	s.pending[0] = zero
	s.pending = s.pending[1:]
	return r, nil
}

func (s *Shards[R]) load(ctx context.Context) error {
	key := s.keys[s.next]
	s.next = (s.next + 1) % len(s.keys)

	raw, ok, err := s.p.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("source: get shard %q: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrShardMissing, key)
	}
	payloads, err := wire.Decode(raw)
	if err != nil {
		return fmt.Errorf("source: shard %q: %w", key, err)
	}
	recs := make([]R, 0, len(payloads))
	for i, b := range payloads {
		r, err := s.codec.Decode(b)
		if err != nil {
			return fmt.Errorf("source: shard %q record %d: %w", key, i, err)
		}
		recs = append(recs, r)
	}
	s.pending = recs
	s.loaded++
	return nil
}

// Len is the number of shard keys, not records.
func (s *Shards[R]) Len() int { return len(s.keys) }

// Loaded reports how many shards have been fetched so far.
func (s *Shards[R]) Loaded() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// WriteShard encodes recs and stores them under key as one shard.
// seq is an opaque caller-chosen sequence number kept in the frame header.
// It reports ok=false when the provider rejected the write.
func WriteShard[R any](ctx context.Context, p provider.Provider, c codec.Codec[R], key string, seq uint64, recs []R, ttl time.Duration) (bool, error) {
	payloads := make([][]byte, 0, len(recs))
	for i, r := range recs {
		b, err := c.Encode(r)
		if err != nil {
			return false, fmt.Errorf("source: encode record %d: %w", i, err)
		}
		payloads = append(payloads, b)
	}
	blob, err := wire.EncodeShard(seq, payloads)
	if err != nil {
		return false, fmt.Errorf("source: frame shard %q: %w", key, err)
	}
	return p.Set(ctx, key, blob, int64(len(blob)), ttl)
}
