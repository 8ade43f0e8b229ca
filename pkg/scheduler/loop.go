package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
)

// DefaultTaskQueueSize is the Dispatch buffer used when NewLoop gets zero.
const DefaultTaskQueueSize = 256

// Loop serializes tasks onto one goroutine and runs a microtask checkpoint
// after each task.
type Loop struct {
	logger *slog.Logger
	tasks  chan func()
	micro  []func()

	closeOnce sync.Once
	done      chan struct{}
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the loop's logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoop creates a loop whose Dispatch buffer holds size tasks.
func NewLoop(size int, opts ...LoopOption) *Loop {
	if size <= 0 {
		size = DefaultTaskQueueSize
	}
	l := &Loop{
		logger: slog.Default().With("component", "loop"),
		tasks:  make(chan func(), size),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Defer schedules fn for the next microtask checkpoint. It must be called
// from the loop goroutine.
func (l *Loop) Defer(fn func()) {
	l.micro = append(l.micro, fn)
}

// Do runs task on the calling goroutine followed by the microtask
// checkpoint. It must be called from the loop goroutine.
func (l *Loop) Do(task func()) {
	l.safe("task", task)
	l.Checkpoint()
}

// Checkpoint runs every deferred microtask, including ones deferred while
// the checkpoint runs.
func (l *Loop) Checkpoint() {
	for len(l.micro) > 0 {
		fn := l.micro[0]
		l.micro[0] = nil
		l.micro = l.micro[1:]
		l.safe("microtask", fn)
	}
}

// Dispatch posts task to the loop. It is safe to call from any goroutine
// and reports false if the loop is closed or its buffer is full.
func (l *Loop) Dispatch(task func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- task:
		return true
	case <-l.done:
		return false
	default:
		l.logger.Warn("dispatch queue full, discarding task")
		return false
	}
}

// Run serves dispatched tasks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case task := <-l.tasks:
			l.Do(task)
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		}
	}
}

// RunPending runs every task already dispatched and returns how many ran.
// It must be called from the loop goroutine.
func (l *Loop) RunPending() int {
	n := 0
	for {
		select {
		case task := <-l.tasks:
			l.Do(task)
			n++
		default:
			return n
		}
	}
}

// Close stops Run. Tasks still buffered are discarded.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

// Done is closed once the loop is closed.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) safe(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error(kind+" panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
