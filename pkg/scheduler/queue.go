package scheduler

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"time"

	verrors "github.com/vango-dev/vcore/internal/errors"
)

// DefaultRecursionLimit is how many times one job may run within a single
// flush before it is dropped.
const DefaultRecursionLimit = 100

// Queue is the job scheduler. It is not safe for concurrent use; it belongs
// to the goroutine running its Loop.
type Queue struct {
	logger   *slog.Logger
	observer Observer
	deferFn  func(func())
	limit    int

	pre  []*Job
	main []*Job
	post []*Job

	// ticks run once after the current (or next) flush.
	ticks []func()

	// queued holds every pending job across all stages.
	queued map[*Job]struct{}

	// mainIndex is the main-stage job currently running, or -1.
	mainIndex int

	flushing  bool
	scheduled bool
	stats     FlushStats
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithObserver sets the flush observer.
func WithObserver(o Observer) Option {
	return func(q *Queue) {
		if o != nil {
			q.observer = o
		}
	}
}

// WithDeferrer sets the function used to schedule a flush at the next
// microtask boundary, usually Loop.Defer. Without one, Flush must be called
// explicitly.
func WithDeferrer(fn func(func())) Option {
	return func(q *Queue) {
		q.deferFn = fn
	}
}

// WithRecursionLimit overrides DefaultRecursionLimit.
func WithRecursionLimit(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.limit = n
		}
	}
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		logger:    slog.Default().With("component", "scheduler"),
		observer:  NopObserver{},
		limit:     DefaultRecursionLimit,
		queued:    make(map[*Job]struct{}),
		mainIndex: -1,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue adds job to the main stage unless it is already pending.
func (q *Queue) Enqueue(job *Job) {
	q.EnqueueStage(StageMain, job)
}

// EnqueuePre adds job to the pre stage unless it is already pending.
func (q *Queue) EnqueuePre(job *Job) {
	q.EnqueueStage(StagePre, job)
}

// EnqueuePost adds job to the post stage unless it is already pending.
func (q *Queue) EnqueuePost(job *Job) {
	q.EnqueueStage(StagePost, job)
}

// EnqueueStage adds job to the given stage unless it is already pending.
func (q *Queue) EnqueueStage(stage Stage, job *Job) {
	if job == nil {
		return
	}
	if _, ok := q.queued[job]; ok {
		return
	}
	q.queued[job] = struct{}{}

	switch stage {
	case StagePre:
		q.pre = append(q.pre, job)
	case StagePost:
		q.post = append(q.post, job)
	default:
		q.insertMain(job)
	}
	q.schedule()
}

// insertMain places job among the pending main jobs, after every pending
// job of equal or lower rank.
func (q *Queue) insertMain(job *Job) {
	order := job.order()
	for i := q.mainIndex + 1; i < len(q.main); i++ {
		if q.main[i] != nil && q.main[i].order() > order {
			q.main = append(q.main, nil)
			copy(q.main[i+1:], q.main[i:])
			q.main[i] = job
			return
		}
	}
	q.main = append(q.main, job)
}

// Remove drops job if it is pending. A running job is unaffected.
func (q *Queue) Remove(job *Job) bool {
	if _, ok := q.queued[job]; !ok {
		return false
	}
	for i := q.mainIndex + 1; i < len(q.main); i++ {
		if q.main[i] == job {
			q.main[i] = nil
			delete(q.queued, job)
			return true
		}
	}
	if removeFrom(&q.pre, job) || removeFrom(&q.post, job) {
		delete(q.queued, job)
		return true
	}
	return false
}

func removeFrom(list *[]*Job, job *Job) bool {
	for i, j := range *list {
		if j == job {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether job is pending.
func (q *Queue) Has(job *Job) bool {
	_, ok := q.queued[job]
	return ok
}

// Pending returns the number of pending jobs.
func (q *Queue) Pending() int {
	return len(q.queued)
}

// Flushing reports whether a flush is draining.
func (q *Queue) Flushing() bool {
	return q.flushing
}

// NextTick runs fn after the current flush, or after the next one if no
// flush is running.
func (q *Queue) NextTick(fn func()) {
	q.ticks = append(q.ticks, fn)
	q.schedule()
}

func (q *Queue) schedule() {
	if q.flushing || q.scheduled || q.deferFn == nil {
		return
	}
	q.scheduled = true
	q.deferFn(q.Flush)
}

// Flush drains every stage until no job is pending. Jobs enqueued while
// draining are folded into this flush. A call made while already flushing
// returns immediately.
func (q *Queue) Flush() {
	if q.flushing {
		return
	}
	q.scheduled = false
	if len(q.queued) == 0 && len(q.ticks) == 0 {
		return
	}

	q.flushing = true
	q.stats = FlushStats{}
	q.observer.FlushStarted()
	start := time.Now()
	counts := make(map[*Job]int)

	for len(q.pre)+len(q.main)+len(q.post) > 0 {
		q.drainPre(counts)
		for q.mainIndex = 0; q.mainIndex < len(q.main); q.mainIndex++ {
			if len(q.pre) > 0 {
				q.drainPre(counts)
			}
			if job := q.main[q.mainIndex]; job != nil {
				q.run(job, counts)
			}
		}
		q.main = q.main[:0]
		q.mainIndex = -1
		q.drainPost(counts)
	}

	q.flushing = false
	q.stats.Duration = time.Since(start)
	q.observer.FlushFinished(q.stats)

	ticks := q.ticks
	q.ticks = nil
	for _, fn := range ticks {
		q.runTick(fn)
	}
}

func (q *Queue) drainPre(counts map[*Job]int) {
	for len(q.pre) > 0 {
		job := q.pre[0]
		q.pre = q.pre[1:]
		q.run(job, counts)
	}
}

func (q *Queue) drainPost(counts map[*Job]int) {
	if len(q.post) == 0 {
		return
	}
	jobs := q.post
	q.post = nil
	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].order() < jobs[j].order() })
	for _, job := range jobs {
		q.run(job, counts)
	}
}

// run executes one job with failure isolation. A job stays pending while it
// runs unless it allows recursion, so its own writes cannot re-queue it.
func (q *Queue) run(job *Job, counts map[*Job]int) {
	if job.AllowRecurse {
		delete(q.queued, job)
	} else {
		defer delete(q.queued, job)
	}

	counts[job]++
	if counts[job] > q.limit {
		err := verrors.New("S002").WithDetailf("%s ran more than %d times in one flush", job, q.limit)
		q.logger.Error(err.Message, err.Attrs()...)
		q.stats.Failed++
		q.observer.JobFailed(job, err)
		return
	}

	q.stats.Jobs++
	if err := q.safeRun(job); err != nil {
		q.stats.Failed++
		q.observer.JobFailed(job, err)
	}
}

func (q *Queue) safeRun(job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			verr := verrors.New("S001").WithDetailf("%s: %v", job, r)
			if e, ok := r.(error); ok {
				verr = verr.Wrap(e)
			}
			q.logger.Error(verr.Message, append(verr.Attrs(), "stack", string(debug.Stack()))...)
			err = verr
		}
	}()
	job.Run()
	return nil
}

func (q *Queue) runTick(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("next tick callback panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}
