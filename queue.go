package workpool

import "sync"

// queue is an unbounded FIFO of runners with many producers and one consumer.
//
// push never blocks. The consumer waits on ready() and then drains with pop()
// until it reports empty; the one-slot signal channel guarantees a push that
// races with a drain is not missed.
//
// Depth is not bounded: a slow consumer grows the backing slice without limit.
type queue struct {
	mu     sync.Mutex
	items  []Runner
	signal chan struct{}
}

func newQueue() *queue {
	return &queue{signal: make(chan struct{}, 1)}
}

func (q *queue) push(r Runner) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
		// consumer already has a pending wake-up
	}
}

func (q *queue) pop() (Runner, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	r := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// release the drained backing array
		q.items = nil
	}
	return r, true
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *queue) ready() <-chan struct{} { return q.signal }
