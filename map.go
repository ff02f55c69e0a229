package workpool

import (
	"context"
	"errors"
	"strconv"
)

// Map runs job once per input on p and returns the results in input order.
//
// Semantics:
// - p must be started (or be started concurrently); otherwise Map waits until ctx is done.
// - Items are submitted round-robin like any other Add; completion order does not matter.
// - A failed input leaves the zero value at its position. The returned error is
//   errors.Join of one *InputError per failed input (nil if none failed).
// - If Add fails (pool stopped) Map returns immediately with that error.
// - If ctx ends first, results gathered so far are returned together with ctx.Err().
//   Items already submitted keep running; Map does not cancel them.
func Map[I, O any](ctx context.Context, p *Pool, job Job[I, O], inputs []I) ([]O, error) {
	items, err := submitAll(p, job, inputs)
	if err != nil {
		return nil, err
	}
	return collectResults(ctx, items)
}

// submitAll wraps each input in an Item tagged with its position and adds it to p.
func submitAll[I, O any](p *Pool, job Job[I, O], inputs []I) ([]*Item[I, O], error) {
	items := make([]*Item[I, O], len(inputs))
	for i, in := range inputs {
		items[i] = NewItem(job, in, WithID("input-"+strconv.Itoa(i)))
		if _, err := p.Add(items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// collectResults waits for every item in order and joins their failures.
func collectResults[I, O any](ctx context.Context, items []*Item[I, O]) ([]O, error) {
	results := make([]O, len(items))
	var errs []error
	for i, it := range items {
		v, err := it.ResultContext(ctx)
		if err != nil {
			if ctx.Err() != nil && !isDone(it) {
				errs = append(errs, ctx.Err())
				break
			}
			errs = append(errs, newInputError(err, i, it.ID()))
			continue
		}
		results[i] = v
	}
	return results, errors.Join(errs...)
}

func isDone[I, O any](it *Item[I, O]) bool {
	select {
	case <-it.Done():
		return true
	default:
		return false
	}
}
