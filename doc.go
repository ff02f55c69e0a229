// Package workpool runs work items on a fixed-size pool of persistent workers.
//
// Each worker owns an independent FIFO queue. Pool.Add assigns items to the
// queues in strict round-robin order and never blocks; the worker bound to a
// queue is its only consumer, so there is no work stealing.
//
// Work items
//   - NewItem(job, input) wraps a Job[I, O] and its input.
//   - Item.Result blocks until the job has run and returns its value or error.
//     Errors and panics raised by the job are captured in the item; they never
//     stop the worker that ran it.
//
// Lifecycle
//   - New(size, opts...) allocates queues and workers; nothing runs yet.
//   - Start(ctx) launches the workers. It may be called once.
//   - Stop() lets each worker finish its current item, waits for all of them
//     and returns the number of items abandoned in the queues. Abandoned items
//     never run, and Result on them blocks forever (ResultContext bounds the wait).
//     A stopped pool cannot be restarted.
//
// Helpers
//   - Map(ctx, pool, job, inputs) submits one item per input and returns the
//     results in input order, joining failures tagged with their input index.
//   - ForEach is Map for jobs without results.
//
// Defaults
// Unless overridden, the following defaults apply to a newly created pool:
//   - Name: "workpool"
//   - Logger: zap.NewNop()
//   - Metrics: metrics.NoopProvider
//
// Queues are unbounded. A producer that outpaces the workers grows memory
// without limit; there is no back-pressure.
package workpool
