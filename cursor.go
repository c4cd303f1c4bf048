package replaycache

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

func (c *cache[R]) Next(ctx context.Context) (R, error) {
	if c.concat <= 1 {
		return c.take(ctx)
	}
	return c.nextBatch(ctx)
}

func (c *cache[R]) All(ctx context.Context) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		for {
			r, err := c.Next(ctx)
			if errors.Is(err, ErrStopped) {
				return
			}
			if err != nil {
				var zero R
				yield(zero, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

// take pops one random record, waiting in poll-interval slices while the store
// is empty. The stored failure wins over cancellation, which wins over data.
func (c *cache[R]) take(ctx context.Context) (_ R, err error) {
	var zero R
	var ph *phase[R]
	defer func() {
		if ph == nil {
			return
		}
		if errors.Is(err, ErrStopped) {
			ph.end(nil)
			return
		}
		ph.end(err)
	}()

	for {
		res := c.store.takeOrWatch()
		switch {
		case res.failure != nil:
			return zero, res.failure
		case res.stopped:
			return zero, ErrStopped
		case res.ok:
			return res.record, nil
		}

		if ph == nil {
			p := c.startPhase(PhaseConsumerWait)
			ph = &p
		}
		if err := c.await(ctx, res.changed); err != nil {
			return zero, err
		}
	}
}

// nextBatch collects up to concat records and hands them to the combiner.
// A batch cut short by Close is still combined; an empty one ends iteration.
func (c *cache[R]) nextBatch(ctx context.Context) (R, error) {
	var zero R
	buf := make([]R, 0, c.concat)
	for len(buf) < c.concat {
		r, err := c.take(ctx)
		if errors.Is(err, ErrStopped) {
			break
		}
		if err != nil {
			return zero, err
		}
		buf = append(buf, r)
	}

	if len(buf) == 0 {
		return zero, ErrStopped
	}
	if len(buf) < c.concat {
		c.log.Warn("combining partial batch on shutdown", Fields{"got": len(buf), "want": c.concat})
		c.hooks.PartialBatch(c.name, len(buf), c.concat)
	}
	return c.combineBatch(buf)
}

func (c *cache[R]) combineBatch(buf []R) (R, error) {
	var zero R
	ph := c.startPhase(PhaseCombine)
	out, err := c.safeCombine(buf)
	if err == nil && len(out) == 0 {
		err = ErrEmptyCombine
	}
	ph.end(err)
	if err != nil {
		return zero, newStageError(c.name, StageCombine, err)
	}
	return out[0], nil
}

// safeCombine runs the combiner on the caller's goroutine, turning a panic into an error.
func (c *cache[R]) safeCombine(buf []R) (out []R, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, v)
		}
	}()
	return c.combine.Combine(buf)
}
