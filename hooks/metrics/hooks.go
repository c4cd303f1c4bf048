// Package metricshooks records cache phases and events through a metrics.Provider.
//
// Instrument names (prefix defaults to "replaycache"):
//
//	<prefix>.phase.<phase>.seconds    histogram per phase
//	<prefix>.phase.<phase>.errors     counter per phase
//	<prefix>.phase.<phase>.inflight   up/down counter per phase
//	<prefix>.producer.failed          counter
//	<prefix>.backpressure             counter
//	<prefix>.partial_batch            counter
//	<prefix>.shutdown_timeout         counter
//
// Instruments are not labeled by cache name; use one Hooks (with its own prefix)
// per cache when several caches share a provider.
package metricshooks

import (
	"time"

	"github.com/unkn0wn-root/replaycache"
	"github.com/unkn0wn-root/replaycache/metrics"
)

type phaseInstruments struct {
	seconds  metrics.Histogram
	errors   metrics.Counter
	inflight metrics.UpDownCounter
}

type Hooks struct {
	phases          map[replaycache.Phase]phaseInstruments
	failed          metrics.Counter
	backpressure    metrics.Counter
	partialBatch    metrics.Counter
	shutdownTimeout metrics.Counter
}

var _ replaycache.Hooks = (*Hooks)(nil)

var allPhases = []replaycache.Phase{
	replaycache.PhaseFetch,
	replaycache.PhaseAugment,
	replaycache.PhaseConsumerWait,
	replaycache.PhaseCombine,
}

// New creates every instrument up front so the hot path only does map reads.
func New(p metrics.Provider, prefix string) *Hooks {
	if p == nil {
		p = metrics.Noop{}
	}
	if prefix == "" {
		prefix = replaycache.Namespace
	}

	h := &Hooks{
		phases:          make(map[replaycache.Phase]phaseInstruments, len(allPhases)),
		failed:          p.Counter(prefix+".producer.failed", metrics.WithUnit("1")),
		backpressure:    p.Counter(prefix+".backpressure", metrics.WithUnit("1")),
		partialBatch:    p.Counter(prefix+".partial_batch", metrics.WithUnit("1")),
		shutdownTimeout: p.Counter(prefix+".shutdown_timeout", metrics.WithUnit("1")),
	}
	for _, ph := range allPhases {
		base := prefix + ".phase." + string(ph)
		h.phases[ph] = phaseInstruments{
			seconds:  p.Histogram(base+".seconds", metrics.WithUnit("s"), metrics.WithDescription(string(ph)+" latency")),
			errors:   p.Counter(base+".errors", metrics.WithUnit("1")),
			inflight: p.UpDownCounter(base+".inflight", metrics.WithUnit("1")),
		}
	}
	return h
}

func (h *Hooks) PhaseStart(_ string, phase replaycache.Phase) {
	if in, ok := h.phases[phase]; ok {
		in.inflight.Add(1)
	}
}

func (h *Hooks) PhaseEnd(_ string, phase replaycache.Phase, elapsed time.Duration, err error) {
	in, ok := h.phases[phase]
	if !ok {
		return
	}
	in.inflight.Add(-1)
	in.seconds.Record(elapsed.Seconds())
	if err != nil {
		in.errors.Add(1)
	}
}

func (h *Hooks) ProducerFailed(string, error)          { h.failed.Add(1) }
func (h *Hooks) Backpressure(string, int)              { h.backpressure.Add(1) }
func (h *Hooks) PartialBatch(string, int, int)         { h.partialBatch.Add(1) }
func (h *Hooks) ShutdownTimeout(string, time.Duration) { h.shutdownTimeout.Add(1) }
