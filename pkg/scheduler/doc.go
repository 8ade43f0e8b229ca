// Package scheduler batches triggered work into flushes.
//
// A Queue holds three stages of jobs. Pre jobs run before the main stage,
// main jobs (component renders) run in rank order so parents update before
// their children, and post jobs run once the tree is patched:
//
//	q := scheduler.New(scheduler.WithDeferrer(loop.Defer))
//	q.Enqueue(job) // flushed at the loop's next microtask checkpoint
//
// Jobs enqueued while a flush is draining join that same flush. A job is
// never pending twice; enqueueing it again while it waits is a no-op.
//
// A Loop is the single goroutine that owns a Runtime and its Queue. Tasks
// posted with Dispatch run one at a time, and after each task the loop runs
// its microtask checkpoint, which is where deferred flushes happen. A burst
// of synchronous writes inside one task therefore collapses into one flush.
package scheduler
