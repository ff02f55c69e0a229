package workpool

import (
	"context"
	"fmt"
	"sync"
)

// Job is the callable wrapped by an Item. It receives the item's input and
// returns a value or an error.
//
// Example:
//
//	square := Job[int, int](func(_ context.Context, x int) (int, error) { return x * x, nil })
//	_ = square
type Job[I, O any] func(ctx context.Context, input I) (O, error)

// Runner is the unit of work accepted by Pool.Add.
// Item is the canonical implementation; callers may supply their own.
type Runner interface {
	// Run executes the work synchronously on the calling goroutine.
	Run(ctx context.Context)
	// ID returns an optional identifier used in logs.
	ID() string
}

// errReporter is implemented by runners that can report a captured failure
// without blocking. The worker uses it for logging and metrics only.
type errReporter interface {
	Err() error
}

// Item binds a Job and its input to a write-once result slot.
// Result blocks until Run has stored an outcome; all reads observe the same outcome.
// Item is safe for concurrent use.
type Item[I, O any] struct {
	job   Job[I, O]
	input I
	id    string

	once  sync.Once
	done  chan struct{}
	value O
	err   error
}

// ItemOption configures an Item.
type ItemOption func(*itemOptions)

type itemOptions struct {
	id string
}

// WithID attaches an identifier to the item.
func WithID(id string) ItemOption {
	return func(o *itemOptions) { o.id = id }
}

// NewItem creates an Item that will invoke job with input when run.
// The job is referenced, not copied: the caller keeps ownership of the closure.
func NewItem[I, O any](job Job[I, O], input I, opts ...ItemOption) *Item[I, O] {
	var o itemOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Item[I, O]{
		job:   job,
		input: input,
		id:    o.id,
		done:  make(chan struct{}),
	}
}

// ID returns the item identifier set via WithID, or an empty string.
func (it *Item[I, O]) ID() string { return it.id }

// Input returns the value the job is invoked with.
func (it *Item[I, O]) Input() I { return it.input }

// Run invokes the job and stores its outcome in the result slot.
// Errors and panics raised by the job are captured, never propagated.
// Only the first call has an effect.
func (it *Item[I, O]) Run(ctx context.Context) {
	it.once.Do(func() {
		defer close(it.done)
		it.value, it.err = execJob(ctx, it.job, it.input)
	})
}

// Result blocks until the item has run and returns the job's value or error.
// For an item that never runs (e.g. abandoned by Pool.Stop) it blocks forever;
// use ResultContext to bound the wait.
func (it *Item[I, O]) Result() (O, error) {
	<-it.done
	return it.value, it.err
}

// ResultContext is like Result but returns ctx.Err() if ctx is done before
// the result slot is populated.
func (it *Item[I, O]) ResultContext(ctx context.Context) (O, error) {
	select {
	case <-it.done:
		return it.value, it.err
	case <-ctx.Done():
		var zero O
		return zero, ctx.Err()
	}
}

// Done returns a channel closed once the result slot is populated.
func (it *Item[I, O]) Done() <-chan struct{} { return it.done }

// Err returns the captured error without blocking.
// It returns nil if the item has not run yet or the job succeeded.
func (it *Item[I, O]) Err() error {
	select {
	case <-it.done:
		return it.err
	default:
		return nil
	}
}

// execJob runs the job and converts a panic into an error wrapping ErrJobPanicked.
func execJob[I, O any](ctx context.Context, job Job[I, O], input I) (result O, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero O
			result, err = zero, fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()

	return job(ctx, input)
}
