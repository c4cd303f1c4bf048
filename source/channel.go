package source

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/replaycache"
)

// Channel reads records sent by another goroutine. Closing ch is an upstream
// failure (ErrExhausted): a replay cache treats its source as infinite.
type Channel[R any] struct {
	ch <-chan R
}

var _ replaycache.Source[int] = Channel[int]{}

func NewChannel[R any](ch <-chan R) Channel[R] { return Channel[R]{ch: ch} }

func (c Channel[R]) Next(ctx context.Context) (R, error) {
	var zero R
	select {
	case r, ok := <-c.ch:
		if !ok {
			return zero, fmt.Errorf("%w: channel closed", ErrExhausted)
		}
		return r, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
