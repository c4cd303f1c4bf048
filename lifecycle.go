package replaycache

import (
	"context"
	"time"
)

// Close executes the shutdown sequence exactly once:
// 1) raise the cancellation flag and cancel the producer context
// 2) wake every waiter (producer under backpressure, consumers on an empty store)
// 3) join the producer within JoinTimeout (or ctx's deadline, if sooner)
// 4) drop all buffered records
// 5) report the stored producer failure, if any
//
// Every call returns the same result: the stored failure if there is one,
// otherwise a *ShutdownTimeoutError if the join gave up, otherwise nil.
//
// Known limitation: a producer stuck inside Source.Next or Augmenter.Augment
// cannot be interrupted. Close still returns within its budget, but that
// goroutine lives on until the call returns; it then exits without touching
// the store.
func (c *cache[R]) Close(ctx context.Context) error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if !c.closed {
		c.closed = true
		c.closeErr = c.shutdown(ctx)
	}
	return c.closeErr
}

func (c *cache[R]) shutdown(ctx context.Context) error {
	c.store.stop()
	c.cancel()

	var joinErr error
	if budget, ok := c.join(ctx); !ok {
		c.log.Warn("producer did not stop within join budget", Fields{"budget": budget.String()})
		c.hooks.ShutdownTimeout(c.name, budget)
		joinErr = &ShutdownTimeoutError{Cache: c.name, Budget: budget}
	}

	dropped := c.store.clear()
	c.log.Info("replay cache closed", Fields{
		"dropped": dropped,
		"fetched": c.fetched.Load(),
	})
	// stop() froze the failure slot, so this is final
	if err := c.store.getFailure(); err != nil {
		return err
	}
	return joinErr
}

// join waits for the producer goroutine to exit. It reports the budget it used
// and whether the producer exited within it.
func (c *cache[R]) join(ctx context.Context) (time.Duration, bool) {
	budget := c.joinTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := dl.Sub(c.clock.Now()); left < budget {
			budget = max(left, 0)
		}
	}

	t := c.clock.NewTimer(budget)
	defer t.Stop()
	select {
	case <-c.exited:
		return budget, true
	case <-t.Chan():
	case <-ctx.Done():
	}
	// the producer may have exited at the same instant
	select {
	case <-c.exited:
		return budget, true
	default:
		return budget, false
	}
}
