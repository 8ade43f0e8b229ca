package reactive

// Computed is a lazily memoized derived value.
//
// Source writes only mark it dirty and notify its own readers; the getter
// runs again on the next read.
type Computed[T any] struct {
	rt     *Runtime
	dep    *Dep
	effect *Effect
	getter func() T
	setter func(T)
	value  T
	dirty  bool
}

// NewComputed creates a read-only derived value.
func NewComputed[T any](rt *Runtime, getter func() T) *Computed[T] {
	return NewWritableComputed(rt, getter, nil)
}

// NewWritableComputed creates a derived value whose Set calls setter.
func NewWritableComputed[T any](rt *Runtime, getter func() T, setter func(T)) *Computed[T] {
	c := &Computed[T]{
		rt:     rt,
		dep:    newDep(),
		getter: getter,
		setter: setter,
		dirty:  true,
	}
	c.effect = rt.NewEffect(func() {
		c.value = c.getter()
	}, Lazy(), WithScheduler(c.invalidate))
	c.effect.computed = true
	return c
}

func (c *Computed[T]) invalidate() {
	if c.dirty {
		return
	}
	c.dirty = true
	c.rt.triggerDep(c.dep)
}

// Get tracks the derived value and returns it, recomputing first if a
// source changed since the last read.
func (c *Computed[T]) Get() T {
	c.rt.trackDep(c.dep)
	if c.dirty || !c.effect.Active() {
		c.effect.Run()
		c.dirty = false
	}
	return c.value
}

// Set forwards value to the setter. Derived values created without a
// setter reject the write.
func (c *Computed[T]) Set(value T) error {
	if c.setter == nil {
		return c.rt.reject("R001", ErrReadonly, "write to computed value")
	}
	c.setter(value)
	return nil
}

// Dirty reports whether the next Get will recompute.
func (c *Computed[T]) Dirty() bool {
	return c.dirty
}

// Stop detaches the derived value from its sources. Later reads recompute
// on every call.
func (c *Computed[T]) Stop() {
	c.effect.Stop()
	c.dirty = true
}
