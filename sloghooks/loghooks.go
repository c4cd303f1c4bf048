package sloghooks

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/replaycache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	PhaseEvery        uint64
	BackpressureEvery uint64
	// Phases slower than this are logged at Warn regardless of sampling. 0 = off.
	SlowPhase time.Duration
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	phaseCtr        atomic.Uint64
	backpressureCtr atomic.Uint64
}

var _ replaycache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

// PhaseStart is not logged; PhaseEnd carries the duration.
func (h *Hooks) PhaseStart(string, replaycache.Phase) {}

func (h *Hooks) PhaseEnd(cache string, phase replaycache.Phase, elapsed time.Duration, err error) {
	if h.l == nil {
		return
	}
	if err != nil {
		h.l.Warn("replaycache.phase_error",
			"cache", cache,
			"phase", string(phase),
			"elapsed", elapsed,
			"err", err)
		return
	}
	if h.opts.SlowPhase > 0 && elapsed >= h.opts.SlowPhase {
		h.l.Warn("replaycache.phase_slow",
			"cache", cache,
			"phase", string(phase),
			"elapsed", elapsed)
		return
	}
	if !sample(h.opts.PhaseEvery, &h.phaseCtr) {
		return
	}
	h.l.Debug("replaycache.phase",
		"cache", cache,
		"phase", string(phase),
		"elapsed", elapsed)
}

func (h *Hooks) ProducerFailed(cache string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("replaycache.producer_failed",
		"cache", cache,
		"err", err)
}

func (h *Hooks) Backpressure(cache string, capacity int) {
	if h.l == nil || !sample(h.opts.BackpressureEvery, &h.backpressureCtr) {
		return
	}
	h.l.Debug("replaycache.backpressure",
		"cache", cache,
		"capacity", capacity)
}

func (h *Hooks) PartialBatch(cache string, got, want int) {
	if h.l == nil {
		return
	}
	h.l.Info("replaycache.partial_batch",
		"cache", cache,
		"got", got,
		"want", want)
}

func (h *Hooks) ShutdownTimeout(cache string, budget time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Warn("replaycache.shutdown_timeout",
		"cache", cache,
		"budget", budget)
}
