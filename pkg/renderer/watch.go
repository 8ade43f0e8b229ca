package renderer

import (
	"fmt"

	"github.com/vango-dev/vcore/pkg/reactive"
	"github.com/vango-dev/vcore/pkg/scheduler"
)

// FlushTiming selects when a watcher reacts to a change.
type FlushTiming uint8

const (
	// FlushPre runs the watcher before component re-renders in the next
	// flush.
	FlushPre FlushTiming = iota

	// FlushPost runs the watcher after the host reflects the flush.
	FlushPost

	// FlushSync runs the watcher inside the write that triggered it.
	FlushSync
)

// StopFunc stops a watcher.
type StopFunc func()

// WatchCallback receives the new and previous source values. onCleanup
// registers a func run before the next callback and when the watcher stops.
type WatchCallback func(value, old any, onCleanup func(func()))

type watchOptions struct {
	immediate bool
	deep      bool
	flush     FlushTiming
}

// WatchOption configures Watch and WatchEffect.
type WatchOption func(*watchOptions)

// Immediate calls the callback once right away with a nil old value.
func Immediate() WatchOption {
	return func(o *watchOptions) { o.immediate = true }
}

// Deep tracks every nested location of the source value and calls the
// callback on any nested change.
func Deep() WatchOption {
	return func(o *watchOptions) { o.deep = true }
}

// Flush sets the watcher timing. The default is FlushPre.
func Flush(t FlushTiming) WatchOption {
	return func(o *watchOptions) { o.flush = t }
}

// Watch calls cb whenever the value of source changes. A source is a
// func() any getter, a reactive handle (watched deeply), or a []any of
// those, in which case values are compared element-wise.
func (r *Renderer) Watch(source any, cb WatchCallback, opts ...WatchOption) StopFunc {
	return r.watch(nil, source, cb, nil, opts)
}

// WatchEffect runs fn now and again whenever anything it read changes.
func (r *Renderer) WatchEffect(fn func(onCleanup func(func())), opts ...WatchOption) StopFunc {
	return r.watch(nil, nil, nil, fn, opts)
}

// Watch is Renderer.Watch bound to the instance: it stops on unmount.
func (i *Instance) Watch(source any, cb WatchCallback, opts ...WatchOption) StopFunc {
	return i.r.watch(i, source, cb, nil, opts)
}

// WatchEffect is Renderer.WatchEffect bound to the instance.
func (i *Instance) WatchEffect(fn func(onCleanup func(func())), opts ...WatchOption) StopFunc {
	return i.r.watch(i, nil, nil, fn, opts)
}

func (r *Renderer) watch(inst *Instance, source any, cb WatchCallback, effectFn func(func(func())), opts []WatchOption) StopFunc {
	var o watchOptions
	for _, opt := range opts {
		opt(&o)
	}

	var (
		getter func() any
		multi  bool
	)
	if cb != nil {
		switch s := source.(type) {
		case func() any:
			getter = s
		case reactive.Handle:
			getter = func() any { return s }
			o.deep = true
		case []any:
			multi = true
			getter = func() any {
				out := make([]any, len(s))
				for i, src := range s {
					out[i] = readSource(src)
				}
				return out
			}
		default:
			r.logger.Warn("invalid watch source", "type", fmt.Sprintf("%T", source))
			return func() {}
		}
		if o.deep {
			base := getter
			getter = func() any {
				v := base()
				traverse(v, make(map[reactive.Handle]struct{}))
				return v
			}
		}
	}

	var (
		effect  *reactive.Effect
		cleanup func()
		current any
		old     any
		started bool
	)
	onCleanup := func(fn func()) { cleanup = fn }
	runCleanup := func() {
		if fn := cleanup; fn != nil {
			cleanup = nil
			fn()
		}
	}

	run := func() { current = getter() }
	if cb == nil {
		run = func() {
			runCleanup()
			effectFn(onCleanup)
		}
	}

	job := &scheduler.Job{Name: "watch", AllowRecurse: cb != nil}
	if inst != nil {
		job.Name = "watch:" + inst.Name()
	}
	job.Run = func() {
		if !effect.Active() {
			return
		}
		effect.Run()
		if cb == nil {
			return
		}
		if started && !o.deep && !changed(current, old, multi) {
			return
		}
		runCleanup()
		var prev any
		if started {
			prev = old
		}
		started = true
		value := current
		r.rt.Untracked(func() { cb(value, prev, onCleanup) })
		old = value
	}

	var schedule func()
	switch o.flush {
	case FlushSync:
		schedule = job.Run
	case FlushPost:
		schedule = func() { r.queue.EnqueuePost(job) }
	default:
		schedule = func() { r.queue.EnqueuePre(job) }
	}
	effect = r.rt.NewEffect(run, reactive.Lazy(), reactive.WithScheduler(schedule), reactive.OnStop(runCleanup))

	switch {
	case cb != nil && o.immediate:
		job.Run()
	case cb != nil:
		effect.Run()
		old = current
		started = true
	case o.flush == FlushPost:
		r.queue.EnqueuePost(job)
	default:
		effect.Run()
	}

	stop := StopFunc(func() {
		effect.Stop()
		r.queue.Remove(job)
	})
	if inst != nil {
		inst.scope = append(inst.scope, stop)
	}
	return stop
}

func readSource(src any) any {
	switch s := src.(type) {
	case func() any:
		return s()
	case reactive.Handle:
		traverse(s, make(map[reactive.Handle]struct{}))
		return s
	}
	return src
}

func changed(value, old any, multi bool) bool {
	if !multi {
		return reactive.HasChanged(value, old)
	}
	next, _ := value.([]any)
	prev, _ := old.([]any)
	if len(next) != len(prev) {
		return true
	}
	for i := range next {
		if reactive.HasChanged(next[i], prev[i]) {
			return true
		}
	}
	return false
}

// traverse reads every nested location of v so the running effect
// subscribes to all of them.
func traverse(v any, seen map[reactive.Handle]struct{}) {
	h, ok := v.(reactive.Handle)
	if !ok {
		return
	}
	if _, dup := seen[h]; dup {
		return
	}
	seen[h] = struct{}{}

	switch t := h.(type) {
	case *reactive.Object:
		t.Range(func(_ string, val any) bool {
			traverse(val, seen)
			return true
		})
	case *reactive.Array:
		t.Range(func(_ int, val any) bool {
			traverse(val, seen)
			return true
		})
	case *reactive.Collection:
		t.Range(func(key, val any) bool {
			traverse(key, seen)
			traverse(val, seen)
			return true
		})
	}
}
