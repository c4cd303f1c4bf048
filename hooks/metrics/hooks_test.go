package metricshooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unkn0wn-root/replaycache"
	"github.com/unkn0wn-root/replaycache/metrics"
)

func TestPhaseInstruments(t *testing.T) {
	p := metrics.NewBasic()
	h := New(p, "t")

	h.PhaseStart("c", replaycache.PhaseFetch)
	if got := p.Value("t.phase.fetch.inflight"); got != 1 {
		t.Fatalf("inflight = %d; want 1", got)
	}
	h.PhaseEnd("c", replaycache.PhaseFetch, 250*time.Millisecond, nil)
	h.PhaseStart("c", replaycache.PhaseFetch)
	h.PhaseEnd("c", replaycache.PhaseFetch, 750*time.Millisecond, errors.New("x"))

	if got := p.Value("t.phase.fetch.inflight"); got != 0 {
		t.Fatalf("inflight = %d; want 0", got)
	}
	if got := p.Value("t.phase.fetch.errors"); got != 1 {
		t.Fatalf("errors = %d; want 1", got)
	}
	s, ok := p.Hist("t.phase.fetch.seconds")
	if !ok || s.Count != 2 || s.Sum != 1 {
		t.Fatalf("unexpected latency snapshot %+v", s)
	}

	// unknown phases are ignored
	h.PhaseStart("c", replaycache.Phase("bogus"))
	h.PhaseEnd("c", replaycache.Phase("bogus"), time.Second, nil)
}

func TestEventCounters(t *testing.T) {
	p := metrics.NewBasic()
	h := New(p, "")
	h.ProducerFailed("c", errors.New("x"))
	h.Backpressure("c", 8)
	h.Backpressure("c", 8)
	h.PartialBatch("c", 1, 3)
	h.ShutdownTimeout("c", time.Second)

	for name, want := range map[string]int64{
		"replaycache.producer.failed":  1,
		"replaycache.backpressure":     2,
		"replaycache.partial_batch":    1,
		"replaycache.shutdown_timeout": 1,
	} {
		if got := p.Value(name); got != want {
			t.Fatalf("%s = %d; want %d", name, got, want)
		}
	}
}

func TestWiredIntoCache(t *testing.T) {
	p := metrics.NewBasic()
	var n int
	src := replaycache.SourceFunc[int](func(context.Context) (int, error) { n++; return n, nil })
	c, err := replaycache.Start(replaycache.Options[int]{
		Source:       src,
		Capacity:     4,
		PollInterval: 5 * time.Millisecond,
		Hooks:        New(p, "rc"),
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 10; i++ {
		if _, err := c.Next(ctx); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	if err := c.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if s, _ := p.Hist("rc.phase.fetch.seconds"); s.Count < 10 {
		t.Fatalf("fetch phases recorded = %d; want >= 10", s.Count)
	}
	if s, _ := p.Hist("rc.phase.augment.seconds"); s.Count < 10 {
		t.Fatalf("augment phases recorded = %d; want >= 10", s.Count)
	}
	if got := p.Value("rc.phase.fetch.inflight"); got != 0 {
		t.Fatalf("fetch inflight after Close = %d", got)
	}
}
