package workpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// worker is the sole consumer of exactly one queue.
type worker struct {
	index int
	queue *queue
	log   *zap.Logger
	inst  *instruments
}

func newWorker(index int, q *queue, log *zap.Logger, inst *instruments) *worker {
	return &worker{
		index: index,
		queue: q,
		log:   log.With(zap.Int("queue", index)),
		inst:  inst,
	}
}

// run consumes the bound queue until interrupt is done.
// Items are executed with runCtx, which is never cancelled by Stop, so an
// in-flight item always runs to completion.
func (w *worker) run(interrupt, runCtx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	w.log.Debug("worker started")
	defer w.log.Debug("worker stopped")

	for {
		select {
		case <-interrupt.Done():
			return
		case <-w.queue.ready():
		}

		for {
			// observe interrupt before every dequeue: nothing new starts after Stop
			if interrupt.Err() != nil {
				return
			}
			r, ok := w.queue.pop()
			if !ok {
				break
			}
			w.inst.depth.Add(-1)
			w.execute(runCtx, r)
		}
	}
}

func (w *worker) execute(ctx context.Context, r Runner) {
	started := time.Now()
	err := w.safeRun(ctx, r)
	w.inst.duration.Record(time.Since(started).Seconds())

	if err == nil {
		if er, ok := r.(errReporter); ok {
			err = er.Err()
		}
	}
	if err != nil {
		w.inst.failed.Add(1)
		w.log.Debug("work item failed", zap.String("item", r.ID()), zap.Error(err))
		return
	}
	w.inst.completed.Add(1)
}

// safeRun shields the loop from runners that panic instead of capturing
// their own failures.
func (w *worker) safeRun(ctx context.Context, r Runner) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, rec)
			w.log.Error("work item panicked in Run", zap.String("item", r.ID()), zap.Any("panic", rec))
		}
	}()

	r.Run(ctx)
	return nil
}
