package reactive

// Ref is a single reactive location with its own dependency set.
type Ref[T any] struct {
	rt      *Runtime
	dep     *Dep
	value   T
	shallow bool
}

// NewRef creates a deep ref. Plain targets stored in it are read back
// through their mutable handle when T allows it.
func NewRef[T any](rt *Runtime, value T) *Ref[T] {
	r := &Ref[T]{rt: rt, dep: newDep()}
	r.value = r.store(value)
	return r
}

// NewShallowRef creates a ref whose value is returned as stored.
func NewShallowRef[T any](rt *Runtime, value T) *Ref[T] {
	return &Ref[T]{rt: rt, dep: newDep(), value: value, shallow: true}
}

// store de-proxies value when the raw target still fits T.
func (r *Ref[T]) store(value T) T {
	if r.shallow {
		return value
	}
	if raw, ok := ToRaw(any(value)).(T); ok {
		return raw
	}
	return value
}

// Get tracks the ref and returns its value.
func (r *Ref[T]) Get() T {
	r.rt.trackDep(r.dep)
	return r.view()
}

// Peek returns the value without tracking.
func (r *Ref[T]) Peek() T {
	return r.view()
}

func (r *Ref[T]) view() T {
	if r.shallow {
		return r.value
	}
	if w, ok := r.rt.wrap(any(r.value), Mutable).(T); ok {
		return w
	}
	return r.value
}

// Value tracks the ref and returns the reactive view of its value, even
// when T is a plain target type that cannot hold a handle.
func (r *Ref[T]) Value() any {
	r.rt.trackDep(r.dep)
	if r.shallow {
		return r.value
	}
	return r.rt.wrap(any(r.value), Mutable)
}

// Set stores value and notifies readers if it changed.
func (r *Ref[T]) Set(value T) {
	if !HasChanged(ToRaw(any(value)), ToRaw(any(r.value))) {
		return
	}
	r.value = r.store(value)
	r.rt.triggerDep(r.dep)
}

// Update sets the ref to fn applied to its current value, untracked.
func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.Peek()))
}

// TriggerRef notifies readers without changing the value. It is meant for
// shallow refs whose value was mutated in place.
func (r *Ref[T]) TriggerRef() {
	r.rt.triggerDep(r.dep)
}

// PropertyRef is a ref view of one key of a reactive record.
type PropertyRef struct {
	obj *Object
	key string
}

// ToRef returns a ref bound to obj[key].
func ToRef(obj *Object, key string) *PropertyRef {
	return &PropertyRef{obj: obj, key: key}
}

// ToRefs returns one property ref per key currently in obj.
func ToRefs(obj *Object) map[string]*PropertyRef {
	refs := make(map[string]*PropertyRef, len(obj.target))
	for k := range obj.target {
		refs[k] = ToRef(obj, k)
	}
	return refs
}

// Get reads the bound key through the record handle.
func (p *PropertyRef) Get() any {
	return p.obj.Get(p.key)
}

// Set writes the bound key through the record handle.
func (p *PropertyRef) Set(value any) error {
	return p.obj.Set(p.key, value)
}
