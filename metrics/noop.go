package metrics

// Noop discards everything.
type Noop struct{}

func (Noop) Counter(string, ...Option) Counter             { return nop{} }
func (Noop) UpDownCounter(string, ...Option) UpDownCounter { return nop{} }
func (Noop) Histogram(string, ...Option) Histogram         { return nop{} }

type nop struct{}

func (nop) Add(int64)      {}
func (nop) Record(float64) {}
