// Package replaycache implements an asynchronous bounded replay cache: a shuffle
// buffer that decouples a slow, logically infinite upstream from its consumers.
//
// A single background producer pulls one record at a time from a Source, fans it
// out through an Augmenter, shuffles the resulting entries and inserts them into
// a capacity-bounded store, blocking while the store is full (backpressure).
// Consumers call Next, which removes a uniformly random entry (not FIFO) and
// blocks while the store is empty. With ConcatSize > 1, Next collects that many
// entries and returns the first record produced by the Combiner.
//
// Components:
//   - Source[R]: upstream (see package source for ready-made ones: Slice, Channel,
//     Shards over a provider.Provider with a codec.Codec).
//   - Augmenter[R] / Combiner[R]: caller strategies; func adapters provided.
//   - Hooks: phase timers and events (hooks/async, hooks/metrics, sloghooks).
//   - Logger: leveled logger adapters (log/zap, log/logrus, log/slog).
//
// Failures:
//
// A producer failure (fetch, augment or a recovered panic) is stored once and is
// terminal: every later Next and Close returns the same *StageError. Combiner
// failures are returned to the calling goroutine only and never stored.
//
// Shutdown:
//
//	c, _ := replaycache.Start(replaycache.Options[Sample]{Source: src, Capacity: 512})
//	for s, err := range c.All(ctx) {
//	    if err != nil { ... }
//	    train(s)
//	}
//	err := c.Close(ctx) // bounded by JoinTimeout even if the source is stuck
//
// All waits are poll loops of PollInterval combined with wakeups, so a Close from
// any goroutine is observed within one interval.
package replaycache
