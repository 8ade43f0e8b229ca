package reactive

// Effect is a computation: a closure whose dependencies are the locations it
// read during its most recent run.
//
// Without a scheduler, a trigger re-runs the effect synchronously. With one,
// the trigger calls the scheduler instead and the owner decides when to Run.
type Effect struct {
	rt *Runtime
	id uint64

	fn        func()
	scheduler func()
	onStop    func()

	// active is false once Stop has been called.
	active bool
	lazy   bool

	// computed marks the effect backing a derived value.
	computed bool

	// runs counts tracked runs.
	runs uint64

	// deps are the dependency sets this effect currently belongs to.
	deps []*Dep
}

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// WithScheduler makes triggers call fn instead of re-running the effect.
func WithScheduler(fn func()) EffectOption {
	return func(e *Effect) {
		e.scheduler = fn
	}
}

// OnStop registers a callback run once when the effect is stopped.
func OnStop(fn func()) EffectOption {
	return func(e *Effect) {
		e.onStop = fn
	}
}

// Lazy creates the effect without running it.
func Lazy() EffectOption {
	return func(e *Effect) {
		e.lazy = true
	}
}

// NewEffect creates a computation running fn. Unless Lazy is given, fn runs
// immediately so its first dependencies are collected.
func (rt *Runtime) NewEffect(fn func(), opts ...EffectOption) *Effect {
	rt.lastEffectID++
	e := &Effect{
		rt:     rt,
		id:     rt.lastEffectID,
		fn:     fn,
		active: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.lazy {
		e.Run()
	}
	return e
}

// ID returns the effect's creation-ordered identifier.
func (e *Effect) ID() uint64 {
	return e.id
}

// Active reports whether the effect has not been stopped.
func (e *Effect) Active() bool {
	return e.active
}

// DepCount returns the number of dependency sets the effect belongs to.
func (e *Effect) DepCount() int {
	return len(e.deps)
}

// Run executes the effect, rebuilding its dependencies from scratch.
//
// A stopped effect runs fn untracked. An effect already on the active stack
// does not run again (no synchronous self re-entry).
func (e *Effect) Run() {
	if !e.active {
		e.fn()
		return
	}
	rt := e.rt
	if rt.onStack(e) {
		return
	}

	e.runs++
	e.cleanup()
	rt.beginTrack(e)
	restore := rt.EnableTracking()
	defer func() {
		restore()
		rt.endTrack()
	}()
	e.fn()
}

// invoke reacts to a trigger: the scheduler if one is set, Run otherwise.
func (e *Effect) invoke() {
	if e.scheduler != nil {
		e.scheduler()
	} else {
		e.Run()
	}
}

// Stop detaches the effect from every dependency set. Further triggers no
// longer reach it.
func (e *Effect) Stop() {
	if !e.active {
		return
	}
	e.cleanup()
	e.active = false
	if e.onStop != nil {
		e.onStop()
	}
}

// cleanup removes the effect from all dependency sets it belongs to.
func (e *Effect) cleanup() {
	for i, dep := range e.deps {
		dep.remove(e)
		e.deps[i] = nil
	}
	e.deps = e.deps[:0]
}
