// Package metrics defines the instruments a workpool.Pool records into.
//
// Provider is deliberately small: a counter, an up/down counter and a
// histogram. Adapt it to any metrics backend, or use the bundled
// NoopProvider (default) and BasicProvider (in-memory, for tests and CLIs).
package metrics

// Provider constructs instruments by name. Asking twice for the same name
// must return the same instrument. Implementations must be safe for concurrent use.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter records monotonic counts.
type Counter interface {
	Add(n int64)
}

// UpDownCounter records values that move both ways (e.g. queue depth).
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records float64 measurements (e.g. durations in seconds).
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig carries advisory instrument metadata.
type InstrumentConfig struct {
	Description string
	Unit        string
}

// InstrumentOption mutates InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

// WithDescription sets an advisory description for the instrument.
func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets an advisory unit for the instrument (e.g. "1", "seconds").
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

func applyOptions(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}
