// Package metrics is the instrument surface used by hooks/metrics. Plug a
// real backend in by implementing Provider; Basic and Noop ship here.
package metrics

// Provider constructs named instruments. Asking twice for the same name must
// return the same instrument. Implementations must be safe for concurrent use.
type Provider interface {
	Counter(name string, opts ...Option) Counter
	UpDownCounter(name string, opts ...Option) UpDownCounter
	Histogram(name string, opts ...Option) Histogram
}

// Counter records monotonic counts.
type Counter interface {
	Add(n int64)
}

// UpDownCounter records a level that moves both ways (buffer occupancy, waiters).
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records measurements, durations in seconds by convention.
type Histogram interface {
	Record(v float64)
}

// Meta is advisory instrument metadata; backends may ignore it.
type Meta struct {
	Description string
	Unit        string
}

type Option func(*Meta)

func WithDescription(desc string) Option { return func(m *Meta) { m.Description = desc } }

func WithUnit(unit string) Option { return func(m *Meta) { m.Unit = unit } }

func buildMeta(opts []Option) Meta {
	var m Meta
	for _, o := range opts {
		if o != nil {
			o(&m)
		}
	}
	return m
}
