package reactive

import (
	"reflect"

	"github.com/emirpasic/gods/sets/linkedhashset"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Variant selects how a handle intercepts its target.
type Variant uint8

const (
	Mutable Variant = iota
	Readonly
	ShallowMutable
	ShallowReadonly

	variantCount
)

// IsReadonly reports whether writes through the variant are rejected.
func (v Variant) IsReadonly() bool {
	return v == Readonly || v == ShallowReadonly
}

// IsShallow reports whether nested values are returned unwrapped.
func (v Variant) IsShallow() bool {
	return v == ShallowMutable || v == ShallowReadonly
}

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case Mutable:
		return "reactive"
	case Readonly:
		return "readonly"
	case ShallowMutable:
		return "shallowReactive"
	case ShallowReadonly:
		return "shallowReadonly"
	default:
		return "unknown"
	}
}

// nested returns the variant used for values read through a deep handle.
func (v Variant) nested() Variant {
	if v.IsReadonly() {
		return Readonly
	}
	return Mutable
}

// targetKind is the interception category of a plain target.
type targetKind uint8

const (
	kindInvalid  targetKind = iota
	kindRecord              // map[string]any
	kindSequence            // *[]any
	kindKeyed               // *orderedmap.OrderedMap[any, any]
	kindUnique              // *linkedhashset.Set
)

// identityOf returns the identity used as the dependency-graph key for a
// plain target, and its category.
func identityOf(v any) (any, targetKind, bool) {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return nil, kindInvalid, false
		}
		return reflect.ValueOf(t).UnsafePointer(), kindRecord, true
	case *[]any:
		if t == nil {
			return nil, kindInvalid, false
		}
		return t, kindSequence, true
	case *orderedmap.OrderedMap[any, any]:
		if t == nil {
			return nil, kindInvalid, false
		}
		return t, kindKeyed, true
	case *linkedhashset.Set:
		if t == nil {
			return nil, kindInvalid, false
		}
		return t, kindUnique, true
	}
	return nil, kindInvalid, false
}

// Handle is implemented by every reactive wrapper.
type Handle interface {
	// Raw returns the plain target behind the handle.
	Raw() any

	// Variant returns how the handle intercepts its target.
	Variant() Variant

	// Runtime returns the runtime the handle belongs to.
	Runtime() *Runtime
}

// handle is embedded in every concrete handle type.
type handle struct {
	rt      *Runtime
	id      any
	kind    targetKind
	variant Variant
}

// Variant returns how the handle intercepts its target.
func (h *handle) Variant() Variant {
	return h.variant
}

// Runtime returns the runtime the handle belongs to.
func (h *handle) Runtime() *Runtime {
	return h.rt
}

func (h *handle) readonly() bool {
	return h.variant.IsReadonly()
}

func (h *handle) track(key any) {
	h.rt.track(h.id, h.kind, key)
}

// isTarget reports whether receiver, once de-proxied, is this handle's target.
func (h *handle) isTarget(receiver any) bool {
	id, _, ok := identityOf(ToRaw(receiver))
	return ok && id == h.id
}

func (h *handle) trigger(op TriggerOp, key any, newValue any) {
	h.rt.trigger(h.id, h.kind, op, key, newValue)
}

// wrapChild lazily wraps a nested value read through a deep handle.
func (h *handle) wrapChild(v any) any {
	if h.variant.IsShallow() {
		return v
	}
	return h.rt.wrap(v, h.variant.nested())
}

// ToRaw returns the plain target behind a handle, or v itself.
func ToRaw(v any) any {
	if h, ok := v.(Handle); ok {
		return h.Raw()
	}
	return v
}

// IsReactive reports whether v is a handle of any variant.
func IsReactive(v any) bool {
	_, ok := v.(Handle)
	return ok
}

// IsReadonly reports whether v is a readonly handle.
func IsReadonly(v any) bool {
	h, ok := v.(Handle)
	return ok && h.Variant().IsReadonly()
}

// IsShallow reports whether v is a shallow handle.
func IsShallow(v any) bool {
	h, ok := v.(Handle)
	return ok && h.Variant().IsShallow()
}

// Reactive returns the deep mutable handle for v. Values that cannot be
// wrapped are returned unchanged.
func (rt *Runtime) Reactive(v any) any { return rt.wrap(v, Mutable) }

// Readonly returns the deep readonly handle for v.
func (rt *Runtime) Readonly(v any) any { return rt.wrap(v, Readonly) }

// ShallowReactive returns the shallow mutable handle for v.
func (rt *Runtime) ShallowReactive(v any) any { return rt.wrap(v, ShallowMutable) }

// ShallowReadonly returns the shallow readonly handle for v.
func (rt *Runtime) ShallowReadonly(v any) any { return rt.wrap(v, ShallowReadonly) }

// MarkRaw flags a plain target so it is never wrapped, and returns it.
func (rt *Runtime) MarkRaw(v any) any {
	if id, _, ok := identityOf(ToRaw(v)); ok {
		rt.raw[id] = struct{}{}
	}
	return v
}

func (rt *Runtime) wrap(v any, variant Variant) any {
	if h, ok := v.(Handle); ok {
		if h.Variant() == variant {
			return h
		}
		// A readonly handle is never loosened by a mutable request.
		if h.Variant().IsReadonly() && !variant.IsReadonly() {
			return h
		}
		v = h.Raw()
	}

	id, kind, ok := identityOf(v)
	if !ok {
		return v
	}
	if _, skip := rt.raw[id]; skip {
		return v
	}
	if cached, ok := rt.caches[variant][id]; ok {
		return cached
	}

	base := handle{rt: rt, id: id, kind: kind, variant: variant}
	var h Handle
	switch kind {
	case kindRecord:
		h = &Object{handle: base, target: v.(map[string]any)}
	case kindSequence:
		h = &Array{handle: base, target: v.(*[]any)}
	case kindKeyed:
		h = &Collection{handle: base, target: orderedMapTarget{v.(*orderedmap.OrderedMap[any, any])}, raw: v}
	case kindUnique:
		h = &Collection{handle: base, target: hashSetTarget{v.(*linkedhashset.Set)}, raw: v}
	}
	rt.caches[variant][id] = h
	return h
}
