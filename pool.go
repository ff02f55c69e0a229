package workpool

import (
	"context"
	"strconv"
	"sync"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"
)

// Pool runs work items on a fixed set of persistent workers.
// Each worker owns one FIFO queue; Add assigns items to queues in strict
// round-robin order. Pool is a concrete struct; methods are safe for concurrent use.
//
// Queues are unbounded: Add never blocks and there is no back-pressure, so a
// producer that outpaces the workers grows memory without limit.
type Pool struct {
	// noCopy prevents accidental copying of the pool.
	//go:nocopy
	nc noCopy

	config *config
	log    *zap.Logger
	inst   *instruments

	queues  []*queue
	workers []*worker

	mu      sync.Mutex
	cursor  int // index of the queue that received the last item; -1 before the first Add
	started bool
	stopped bool
	cancel  context.CancelFunc

	wg        sync.WaitGroup
	lifecycle *lifecycleCoordinator
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
// It works with the "-copylocks" analyzer via the presence of Lock/Unlock methods.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New creates a Pool with size workers using functional options.
// Queues and workers are allocated but dormant until Start.
func New(size int, opts ...Option) (*Pool, error) {
	if size <= 0 {
		return nil, errorc.With(ErrInvalidSize, errorc.String("size", strconv.Itoa(size)))
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	p := &Pool{cursor: -1}
	p.initialize(size, &cfg)
	return p, nil
}

// initialize allocates queues and binds one worker to each of them by index.
func (p *Pool) initialize(size int, cfg *config) {
	p.config = cfg
	p.log = cfg.Logger.With(zap.String("pool", cfg.Name))
	p.inst = newInstruments(cfg.Metrics)

	p.queues = make([]*queue, size)
	p.workers = make([]*worker, size)
	for i := range size {
		p.queues[i] = newQueue()
		p.workers[i] = newWorker(i, p.queues[i], p.log, p.inst)
	}

	p.lifecycle = newLifecycleCoordinator(
		p.rejectAdds,
		p.cancelInterrupt,
		&p.wg,
		p.Pending,
		p.reportStopped,
	)
}

// Start launches all workers.
//
// Items added before Start wait in their queues and are executed once the
// workers run. Values carried by ctx are visible to jobs. Cancelling ctx makes
// the workers exit the same way Stop does, but only Stop waits for them and
// rejects further Add calls.
//
// Start returns ErrAlreadyStarted on a second call and ErrPoolStopped after Stop.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.stopped:
		return ErrPoolStopped
	case p.started:
		return ErrAlreadyStarted
	}

	interrupt, cancel := context.WithCancel(ctx)
	runCtx := context.WithoutCancel(ctx)
	p.cancel = cancel
	p.started = true

	for _, w := range p.workers {
		p.wg.Add(1)
		go w.run(interrupt, runCtx, &p.wg)
	}

	p.log.Info("pool started", zap.Int("workers", len(p.workers)))
	return nil
}

// Stop signals every worker to exit and waits until they have.
//
// A worker finishes the item it is executing, if any, and then exits.
// Items still queued are abandoned: they never run and their result slots
// are never populated, so Result on them blocks forever. Stop returns the
// number of abandoned items and logs it.
//
// Stop is terminal: afterwards Add returns ErrPoolStopped and Start cannot
// restart the pool. Stop is idempotent; repeated calls return 0.
func (p *Pool) Stop() int {
	return p.lifecycle.Stop()
}

// Add places item on the queue following the one that received the previous
// item, wrapping after the last queue, and returns the chosen queue index.
//
// Add never blocks on queue depth. It may be called before Start.
// It returns ErrNilItem for a nil item and ErrPoolStopped after Stop.
func (p *Pool) Add(item Runner) (int, error) {
	if item == nil {
		return -1, ErrNilItem
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return -1, ErrPoolStopped
	}
	idx := (p.cursor + 1) % len(p.queues)
	p.queues[idx].push(item)
	p.cursor = idx
	p.mu.Unlock()

	p.inst.submitted.Add(1)
	p.inst.depth.Add(1)
	return idx, nil
}

// Size returns the number of workers, fixed at construction.
func (p *Pool) Size() int { return len(p.queues) }

// Pending returns the number of items queued and not yet dequeued across all queues.
func (p *Pool) Pending() int {
	n := 0
	for _, q := range p.queues {
		n += q.len()
	}
	return n
}

// QueueLen returns the number of items waiting in queue i,
// or 0 if i is not a valid queue index.
func (p *Pool) QueueLen(i int) int {
	if i < 0 || i >= len(p.queues) {
		return 0
	}
	return p.queues[i].len()
}

func (p *Pool) rejectAdds() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}

func (p *Pool) cancelInterrupt() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (p *Pool) reportStopped(abandoned int) {
	if abandoned > 0 {
		p.inst.abandoned.Add(int64(abandoned))
		p.log.Warn("pool stopped with queued items abandoned", zap.Int("abandoned", abandoned))
		return
	}
	p.log.Info("pool stopped")
}
