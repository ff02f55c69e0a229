package workpool

import (
	"sync"
)

// lifecycleCoordinator encapsulates the shutdown sequence for Pool.
// It is a wiring helper: it doesn't own queues or workers; it orchestrates
// rejection of new items, cancellation, waits and reporting in a deterministic order.
//
// Stop() is safe for concurrent calls; the sequence executes exactly once.
type lifecycleCoordinator struct {
	reject    func()
	cancel    func()
	workers   *sync.WaitGroup
	remaining func() int
	report    func(abandoned int)

	once sync.Once
}

func newLifecycleCoordinator(
	reject func(),
	cancel func(),
	workers *sync.WaitGroup,
	remaining func() int,
	report func(abandoned int),
) *lifecycleCoordinator {
	return &lifecycleCoordinator{
		reject:    reject,
		cancel:    cancel,
		workers:   workers,
		remaining: remaining,
		report:    report,
	}
}

// Stop executes the shutdown sequence exactly once:
// 1) reject further Add calls
// 2) cancel the interrupt context
// 3) wait for every worker to finish its in-flight item and exit
// 4) count items still queued (abandoned)
// 5) report the count
//
// The first caller gets the abandoned count; every other call returns 0 once
// the sequence has completed.
func (lc *lifecycleCoordinator) Stop() int {
	abandoned := 0
	lc.once.Do(func() {
		if lc.reject != nil {
			lc.reject()
		}
		if lc.cancel != nil {
			lc.cancel()
		}
		if lc.workers != nil {
			lc.workers.Wait()
		}
		if lc.remaining != nil {
			abandoned = lc.remaining()
		}
		if lc.report != nil {
			lc.report(abandoned)
		}
	})
	return abandoned
}
