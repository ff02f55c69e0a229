package workpool

import "github.com/ygrebnov/workpool/metrics"

// Instrument names registered by every Pool.
const (
	MetricItemsSubmitted = "workpool_items_submitted_total"
	MetricItemsCompleted = "workpool_items_completed_total"
	MetricItemsFailed    = "workpool_items_failed_total"
	MetricItemsAbandoned = "workpool_items_abandoned_total"
	MetricQueueDepth     = "workpool_queue_depth"
	MetricItemDuration   = "workpool_item_duration_seconds"
)

type instruments struct {
	submitted metrics.Counter
	completed metrics.Counter
	failed    metrics.Counter
	abandoned metrics.Counter
	depth     metrics.UpDownCounter
	duration  metrics.Histogram
}

func newInstruments(p metrics.Provider) *instruments {
	return &instruments{
		submitted: p.Counter(MetricItemsSubmitted, metrics.WithUnit("1"),
			metrics.WithDescription("work items accepted by Add")),
		completed: p.Counter(MetricItemsCompleted, metrics.WithUnit("1"),
			metrics.WithDescription("work items whose job returned without error")),
		failed: p.Counter(MetricItemsFailed, metrics.WithUnit("1"),
			metrics.WithDescription("work items whose job returned an error or panicked")),
		abandoned: p.Counter(MetricItemsAbandoned, metrics.WithUnit("1"),
			metrics.WithDescription("work items left queued when the pool stopped")),
		depth: p.UpDownCounter(MetricQueueDepth, metrics.WithUnit("1"),
			metrics.WithDescription("work items queued and not yet dequeued")),
		duration: p.Histogram(MetricItemDuration, metrics.WithUnit("seconds"),
			metrics.WithDescription("job execution time")),
	}
}
