package replaycache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"golang.org/x/time/rate"
)

type producerState int

const (
	stateRunning producerState = iota
	stateStopping
	stateStopped
)

// producer is the single background goroutine feeding the store.
// rng is touched only by this goroutine.
type producer[R any] struct {
	c       *cache[R]
	rng     *rand.Rand
	limiter *rate.Limiter
	state   producerState
}

func newProducer[R any](c *cache[R], seed uint64, limiter *rate.Limiter) *producer[R] {
	return &producer[R]{
		c:       c,
		rng:     rand.New(rand.NewPCG(seed, producerStream)),
		limiter: limiter,
		state:   stateRunning,
	}
}

// run loops until cancellation or the first stored failure. Panics anywhere
// on the producer path are stored as StageUnexpected instead of crashing the process.
func (p *producer[R]) run(ctx context.Context) {
	defer close(p.c.exited)
	defer func() {
		if v := recover(); v != nil {
			p.fail(StageUnexpected, fmt.Errorf("%w: %v", ErrPanicked, v))
		}
		p.state = stateStopped
		p.c.log.Debug("producer stopped", Fields{"fetched": p.c.fetched.Load()})
	}()

	for p.state == stateRunning {
		p.state = p.step(ctx)
	}
}

// step handles one upstream record: fetch, augment, shuffle, insert.
func (p *producer[R]) step(ctx context.Context) producerState {
	if p.cancelled() {
		return stateStopping
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			if p.cancelled() {
				return stateStopping
			}
			p.fail(StageUnexpected, err)
			return stateStopping
		}
	}

	rec, err := p.fetch(ctx)
	if err != nil {
		// a cooperative source returning because Close canceled ctx is a clean stop
		if p.cancelled() && errors.Is(err, context.Canceled) {
			return stateStopping
		}
		p.fail(StageFetch, err)
		return stateStopping
	}
	if p.cancelled() {
		return stateStopping
	}

	subs, err := p.augmentRecord(rec)
	if err != nil {
		p.fail(StageAugment, err)
		return stateStopping
	}
	if len(subs) == 0 {
		p.c.log.Debug("augment produced no records", nil)
		return stateRunning
	}

	for _, i := range p.rng.Perm(len(subs)) {
		if !p.insert(ctx, subs[i]) {
			return stateStopping
		}
	}
	return stateRunning
}

func (p *producer[R]) fetch(ctx context.Context) (R, error) {
	ph := p.c.startPhase(PhaseFetch)
	rec, err := p.c.source.Next(ctx)
	ph.end(err)
	if err == nil {
		p.c.fetched.Add(1)
	}
	return rec, err
}

func (p *producer[R]) augmentRecord(rec R) ([]R, error) {
	ph := p.c.startPhase(PhaseAugment)
	subs, err := p.c.augment.Augment(rec)
	ph.end(err)
	return subs, err
}

// insert blocks under backpressure until r is stored or the cache is stopped.
func (p *producer[R]) insert(ctx context.Context, r R) bool {
	reported := false
	for {
		ok, changed := p.c.store.pushOrWatch(r)
		if ok {
			return true
		}
		if changed == nil {
			return false
		}
		if !reported {
			p.c.hooks.Backpressure(p.c.name, p.c.store.capacity)
			reported = true
		}
		if err := p.c.await(ctx, changed); err != nil {
			return false
		}
	}
}

func (p *producer[R]) cancelled() bool { return p.c.store.stopped.Load() }

func (p *producer[R]) fail(stage Stage, err error) {
	se := newStageError(p.c.name, stage, err)
	if !p.c.store.setFailure(se) {
		return
	}
	p.c.log.Error("producer failed", Fields{"stage": string(stage), "err": err})
	p.c.hooks.ProducerFailed(p.c.name, se)
}
