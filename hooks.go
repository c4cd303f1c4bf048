package replaycache

import "time"

// Phase names a timed section of the producer or consumer path.
type Phase string

const (
	PhaseFetch        Phase = "fetch"
	PhaseAugment      Phase = "augment"
	PhaseConsumerWait Phase = "consumer-wait"
	PhaseCombine      Phase = "combine"
)

// Hooks lightweight callbacks for diagnostics.
// Implementations MUST be cheap and non-blocking; they run on the producer
// goroutine and on consumer call paths. Wrap slow sinks with hooks/async.
// A nil Hooks in Options means NopHooks; hooks never change cache behavior.
type Hooks interface {
	// PhaseStart and PhaseEnd bracket every fetch, augment, consumer wait and combine.
	// err is the phase outcome (nil on success).
	PhaseStart(cache string, phase Phase)
	PhaseEnd(cache string, phase Phase, elapsed time.Duration, err error)

	// The producer stored a terminal failure.
	ProducerFailed(cache string, err error)

	// The producer found the store full and had to wait.
	Backpressure(cache string, capacity int)

	// A batch was combined from fewer records than requested because of shutdown.
	PartialBatch(cache string, got, want int)

	// Close gave up waiting for the producer.
	ShutdownTimeout(cache string, budget time.Duration)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) PhaseStart(string, Phase)                     {}
func (NopHooks) PhaseEnd(string, Phase, time.Duration, error) {}
func (NopHooks) ProducerFailed(string, error)                 {}
func (NopHooks) Backpressure(string, int)                     {}
func (NopHooks) PartialBatch(string, int, int)                {}
func (NopHooks) ShutdownTimeout(string, time.Duration)        {}
