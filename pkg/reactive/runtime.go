package reactive

import (
	"log/slog"
	"sort"
)

// TriggerOp describes the kind of change passed to Trigger.
type TriggerOp uint8

const (
	TriggerSet TriggerOp = iota + 1
	TriggerAdd
	TriggerDelete
	TriggerClear
)

// String returns a human-readable name for the trigger op.
func (op TriggerOp) String() string {
	switch op {
	case TriggerSet:
		return "set"
	case TriggerAdd:
		return "add"
	case TriggerDelete:
		return "delete"
	case TriggerClear:
		return "clear"
	default:
		return "unknown"
	}
}

// syntheticKey is a location key no user key can collide with.
type syntheticKey string

var (
	// IterateKey is the location read by enumeration (keys, ranges, sizes).
	IterateKey any = syntheticKey("iterate")

	// LengthKey is the location holding a sequence's length.
	LengthKey any = syntheticKey("length")
)

// depsMap holds the dependency sets of one target, keyed by location key.
type depsMap struct {
	kind targetKind
	keys map[any]*Dep
}

// Runtime is the explicit tracking context. It owns the dependency graph,
// the active-computation stack and the handle caches.
//
// A Runtime must only be used from one goroutine at a time.
type Runtime struct {
	logger *slog.Logger

	// stack holds the currently running computations, innermost last.
	stack []*Effect

	// tracking is the tracking-enabled guard stack. Empty means enabled.
	tracking []bool

	// targets maps target identity to its per-key dependency sets.
	targets map[any]*depsMap

	// caches holds one handle per (variant, target identity).
	caches [variantCount]map[any]Handle

	// raw holds identities of targets that must never be wrapped.
	raw map[any]struct{}

	lastEffectID uint64
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// NewRuntime creates an empty runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		logger:  slog.Default().With("component", "reactive"),
		targets: make(map[any]*depsMap),
		raw:     make(map[any]struct{}),
	}
	for i := range rt.caches {
		rt.caches[i] = make(map[any]Handle)
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// =============================================================================
// Active computation stack
// =============================================================================

// beginTrack makes e the active computation.
func (rt *Runtime) beginTrack(e *Effect) {
	rt.stack = append(rt.stack, e)
}

// endTrack restores the previously active computation.
func (rt *Runtime) endTrack() {
	rt.stack[len(rt.stack)-1] = nil
	rt.stack = rt.stack[:len(rt.stack)-1]
}

// ActiveEffect returns the innermost running computation, or nil.
func (rt *Runtime) ActiveEffect() *Effect {
	if len(rt.stack) == 0 {
		return nil
	}
	return rt.stack[len(rt.stack)-1]
}

func (rt *Runtime) onStack(e *Effect) bool {
	for _, s := range rt.stack {
		if s == e {
			return true
		}
	}
	return false
}

// =============================================================================
// Tracking guard
// =============================================================================

// PauseTracking disables tracking until the returned restore func runs.
//
//	defer rt.PauseTracking()()
func (rt *Runtime) PauseTracking() (restore func()) {
	return rt.pushTracking(false)
}

// EnableTracking re-enables tracking (inside a paused region) until the
// returned restore func runs.
func (rt *Runtime) EnableTracking() (restore func()) {
	return rt.pushTracking(true)
}

func (rt *Runtime) pushTracking(enabled bool) func() {
	depth := len(rt.tracking)
	rt.tracking = append(rt.tracking, enabled)
	return func() {
		rt.tracking = rt.tracking[:depth]
	}
}

// IsTracking reports whether a read right now would be recorded.
func (rt *Runtime) IsTracking() bool {
	if len(rt.stack) == 0 {
		return false
	}
	return len(rt.tracking) == 0 || rt.tracking[len(rt.tracking)-1]
}

// Untracked runs fn with tracking paused.
func (rt *Runtime) Untracked(fn func()) {
	defer rt.PauseTracking()()
	fn()
}

// =============================================================================
// Track / Trigger
// =============================================================================

// Track records that the active computation read (target, key).
// It is a no-op when nothing is running or tracking is paused.
func (rt *Runtime) Track(target any, key any) {
	id, kind, ok := identityOf(ToRaw(target))
	if !ok {
		return
	}
	rt.track(id, kind, key)
}

func (rt *Runtime) track(id any, kind targetKind, key any) {
	if !rt.IsTracking() {
		return
	}
	m := rt.targets[id]
	if m == nil {
		m = &depsMap{kind: kind, keys: make(map[any]*Dep)}
		rt.targets[id] = m
	}
	dep := m.keys[key]
	if dep == nil {
		dep = newDep()
		m.keys[key] = dep
	}
	rt.trackDep(dep)
}

// trackDep subscribes the active computation to dep and records the
// reverse link on the computation.
func (rt *Runtime) trackDep(dep *Dep) {
	if !rt.IsTracking() {
		return
	}
	e := rt.ActiveEffect()
	if dep.has(e) {
		return
	}
	dep.add(e)
	e.deps = append(e.deps, dep)
}

// Trigger notifies every computation that depends on (target, key).
// newValue is only consulted for length writes on sequences.
func (rt *Runtime) Trigger(target any, op TriggerOp, key any, newValue any) {
	id, kind, ok := identityOf(ToRaw(target))
	if !ok {
		return
	}
	rt.trigger(id, kind, op, key, newValue)
}

func (rt *Runtime) trigger(id any, kind targetKind, op TriggerOp, key any, newValue any) {
	m := rt.targets[id]
	if m == nil {
		return
	}

	var run runSet
	switch {
	case op == TriggerClear:
		for _, dep := range m.keys {
			run.addDep(dep)
		}

	case key == LengthKey && kind == kindSequence:
		newLen, _ := newValue.(int)
		for k, dep := range m.keys {
			if k == LengthKey {
				run.addDep(dep)
			} else if idx, ok := k.(int); ok && idx >= newLen {
				run.addDep(dep)
			}
		}

	default:
		if key != nil {
			run.addDep(m.keys[key])
		}
		switch op {
		case TriggerAdd:
			if kind != kindSequence {
				run.addDep(m.keys[IterateKey])
			} else if _, isIndex := key.(int); isIndex {
				run.addDep(m.keys[LengthKey])
			}
		case TriggerDelete:
			if kind != kindSequence {
				run.addDep(m.keys[IterateKey])
			}
		case TriggerSet:
			if kind == kindKeyed {
				run.addDep(m.keys[IterateKey])
			}
		}
	}

	rt.runEffects(run)
}

// triggerDep notifies the subscribers of a single private dep (refs and
// derived values).
func (rt *Runtime) triggerDep(dep *Dep) {
	var run runSet
	run.addDep(dep)
	rt.runEffects(run)
}

// runEffects invokes each collected computation once, skipping the
// computation that is currently executing. Derived values are invalidated
// first so that computations reading them see the new value; a computation
// already re-run by that invalidation is not run again.
func (rt *Runtime) runEffects(run runSet) {
	effects := run.sorted()
	active := rt.ActiveEffect()
	runs := make([]uint64, len(effects))
	for i, e := range effects {
		runs[i] = e.runs
	}
	for _, e := range effects {
		if e.computed && e != active {
			e.invoke()
		}
	}
	for i, e := range effects {
		if e.computed || e == active || e.runs != runs[i] {
			continue
		}
		e.invoke()
	}
}

// runSet is a deduplicated set of computations collected by one trigger.
type runSet struct {
	seen map[*Effect]struct{}
	list []*Effect
}

func (r *runSet) addDep(dep *Dep) {
	if dep == nil {
		return
	}
	for e := range dep.subs {
		if r.seen == nil {
			r.seen = make(map[*Effect]struct{})
		}
		if _, ok := r.seen[e]; ok {
			continue
		}
		r.seen[e] = struct{}{}
		r.list = append(r.list, e)
	}
}

func (r *runSet) sorted() []*Effect {
	sort.Slice(r.list, func(i, j int) bool { return r.list[i].id < r.list[j].id })
	return r.list
}

// DepCount returns the number of computations subscribed to (target, key).
// It is meant for diagnostics and tests.
func (rt *Runtime) DepCount(target any, key any) int {
	id, _, ok := identityOf(ToRaw(target))
	if !ok {
		return 0
	}
	m := rt.targets[id]
	if m == nil || m.keys[key] == nil {
		return 0
	}
	return len(m.keys[key].subs)
}
