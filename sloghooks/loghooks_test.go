package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/replaycache"
)

func newBuf(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func TestPhaseSampling(t *testing.T) {
	l, buf := newBuf(slog.LevelDebug)
	h := New(l, Options{PhaseEvery: 3})
	for i := 0; i < 9; i++ {
		h.PhaseEnd("c", replaycache.PhaseFetch, time.Millisecond, nil)
	}
	if got := strings.Count(buf.String(), "replaycache.phase "); got != 3 {
		t.Fatalf("logged %d phase lines; want 3\n%s", got, buf.String())
	}
}

func TestPhaseErrorsAndSlowAlwaysLogged(t *testing.T) {
	l, buf := newBuf(slog.LevelWarn)
	h := New(l, Options{PhaseEvery: 1000, SlowPhase: 100 * time.Millisecond})
	h.PhaseEnd("c", replaycache.PhaseAugment, time.Millisecond, errors.New("bad"))
	h.PhaseEnd("c", replaycache.PhaseCombine, time.Second, nil)
	h.PhaseEnd("c", replaycache.PhaseCombine, time.Millisecond, nil)

	out := buf.String()
	if !strings.Contains(out, "replaycache.phase_error") || !strings.Contains(out, "err=bad") {
		t.Fatalf("missing phase error line:\n%s", out)
	}
	if strings.Count(out, "replaycache.phase_slow") != 1 {
		t.Fatalf("want exactly one slow line:\n%s", out)
	}
}

func TestEvents(t *testing.T) {
	l, buf := newBuf(slog.LevelDebug)
	h := New(l, Options{})
	h.ProducerFailed("train", errors.New("upstream"))
	h.Backpressure("train", 64)
	h.PartialBatch("train", 2, 5)
	h.ShutdownTimeout("train", time.Second)

	out := buf.String()
	for _, want := range []string{
		"replaycache.producer_failed",
		"replaycache.backpressure",
		"capacity=64",
		"replaycache.partial_batch",
		"got=2",
		"want=5",
		"replaycache.shutdown_timeout",
		"cache=train",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{})
	h.PhaseStart("c", replaycache.PhaseFetch)
	h.PhaseEnd("c", replaycache.PhaseFetch, 0, nil)
	h.ProducerFailed("c", nil)
	h.Backpressure("c", 1)
	h.PartialBatch("c", 1, 2)
	h.ShutdownTimeout("c", 0)
}
