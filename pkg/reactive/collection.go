package reactive

import (
	"github.com/emirpasic/gods/sets/linkedhashset"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Op names a collection operation in the instrumentation tables.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpAdd    Op = "add"
	OpHas    Op = "has"
	OpDelete Op = "delete"
	OpClear  Op = "clear"
	OpSize   Op = "size"
	OpRange  Op = "range"
)

// opArgs carries the arguments of one collection operation.
type opArgs struct {
	key   any
	value any
	each  func(key, value any) bool
}

// opResult carries the result of one collection operation.
type opResult struct {
	value any
	ok    bool
	n     int
}

type instrumented func(c *Collection, a opArgs) (opResult, error)

// instrumentations holds the per-variant method tables. An operation
// missing from a table is delegated to the plain target untouched.
var instrumentations [variantCount]map[Op]instrumented

func init() {
	reads := map[Op]instrumented{
		OpGet:   collectionGet,
		OpHas:   collectionHas,
		OpSize:  collectionSize,
		OpRange: collectionRange,
	}
	mutable := map[Op]instrumented{
		OpSet:    collectionSet,
		OpAdd:    collectionAdd,
		OpDelete: collectionDelete,
		OpClear:  collectionClear,
	}
	readonly := map[Op]instrumented{
		OpSet:    rejectWrite,
		OpAdd:    rejectWrite,
		OpDelete: rejectDelete,
		OpClear:  rejectDelete,
	}
	for v := Variant(0); v < variantCount; v++ {
		table := make(map[Op]instrumented, len(reads)+len(mutable))
		for op, fn := range reads {
			table[op] = fn
		}
		writes := mutable
		if v.IsReadonly() {
			writes = readonly
		}
		for op, fn := range writes {
			table[op] = fn
		}
		instrumentations[v] = table
	}
}

// collectionTarget adapts a plain collection structure. Methods a structure
// cannot serve return ErrUnsupported.
type collectionTarget interface {
	get(key any) (any, bool, error)
	set(key, value any) (old any, had bool, err error)
	add(value any) (added bool, err error)
	has(key any) bool
	remove(key any) (old any, had bool)
	clear()
	size() int
	each(fn func(key, value any) bool)
}

// Collection is a handle over a key-value (*orderedmap.OrderedMap[any, any])
// or unique-value (*linkedhashset.Set) structure.
type Collection struct {
	handle
	target collectionTarget
	raw    any
}

// Raw returns the plain collection.
func (c *Collection) Raw() any {
	return c.raw
}

// Keyed reports whether the collection maps keys to values.
func (c *Collection) Keyed() bool {
	return c.kind == kindKeyed
}

func (c *Collection) call(op Op, a opArgs) (opResult, error) {
	if fn, ok := instrumentations[c.variant][op]; ok {
		return fn(c, a)
	}
	return delegate(c, op, a)
}

// Get returns the value stored at key.
func (c *Collection) Get(key any) (any, bool) {
	r, err := c.call(OpGet, opArgs{key: key})
	if err != nil {
		return nil, false
	}
	return r.value, r.ok
}

// Set stores value at key.
func (c *Collection) Set(key, value any) error {
	_, err := c.call(OpSet, opArgs{key: key, value: value})
	return err
}

// Add inserts value into a unique-value collection.
func (c *Collection) Add(value any) error {
	_, err := c.call(OpAdd, opArgs{value: value})
	return err
}

// Has reports whether key (or value, for unique-value collections) is present.
func (c *Collection) Has(key any) bool {
	r, _ := c.call(OpHas, opArgs{key: key})
	return r.ok
}

// Delete removes key and reports whether it was present.
func (c *Collection) Delete(key any) (bool, error) {
	r, err := c.call(OpDelete, opArgs{key: key})
	return r.ok, err
}

// Clear removes every entry.
func (c *Collection) Clear() error {
	_, err := c.call(OpClear, opArgs{})
	return err
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	r, _ := c.call(OpSize, opArgs{})
	return r.n
}

// Range calls fn for each entry in insertion order until fn returns false.
// For unique-value collections key and value are the same item.
func (c *Collection) Range(fn func(key, value any) bool) {
	_, _ = c.call(OpRange, opArgs{each: fn})
}

// Invoke runs a named operation. It exists for callers that dispatch on
// operation names, such as bindings generated from templates.
func (c *Collection) Invoke(op Op, key, value any) (any, bool, error) {
	r, err := c.call(op, opArgs{key: key, value: value})
	if op == OpSize {
		return r.n, err == nil, err
	}
	return r.value, r.ok, err
}

func (c *Collection) unsupported(op Op) error {
	return c.rt.reject("R003", ErrUnsupported, "%s on %T", op, c.raw)
}

func collectionGet(c *Collection, a opArgs) (opResult, error) {
	key := ToRaw(a.key)
	c.track(key)
	v, ok, err := c.target.get(key)
	if err != nil {
		return opResult{}, c.unsupported(OpGet)
	}
	return opResult{value: c.wrapChild(v), ok: ok}, nil
}

func collectionHas(c *Collection, a opArgs) (opResult, error) {
	key := ToRaw(a.key)
	c.track(key)
	return opResult{ok: c.target.has(key)}, nil
}

func collectionSize(c *Collection, _ opArgs) (opResult, error) {
	c.track(IterateKey)
	return opResult{n: c.target.size()}, nil
}

func collectionRange(c *Collection, a opArgs) (opResult, error) {
	c.track(IterateKey)
	if a.each == nil {
		return opResult{}, nil
	}
	c.target.each(func(k, v any) bool {
		return a.each(c.wrapChild(k), c.wrapChild(v))
	})
	return opResult{}, nil
}

func collectionSet(c *Collection, a opArgs) (opResult, error) {
	key, value := ToRaw(a.key), a.value
	if !c.variant.IsShallow() {
		value = ToRaw(value)
	}
	old, had, err := c.target.set(key, value)
	if err != nil {
		return opResult{}, c.unsupported(OpSet)
	}
	if !had {
		c.trigger(TriggerAdd, key, value)
	} else if HasChanged(value, old) {
		c.trigger(TriggerSet, key, value)
	}
	return opResult{ok: true}, nil
}

func collectionAdd(c *Collection, a opArgs) (opResult, error) {
	value := ToRaw(a.value)
	added, err := c.target.add(value)
	if err != nil {
		return opResult{}, c.unsupported(OpAdd)
	}
	if added {
		c.trigger(TriggerAdd, value, value)
	}
	return opResult{ok: added}, nil
}

func collectionDelete(c *Collection, a opArgs) (opResult, error) {
	key := ToRaw(a.key)
	_, had := c.target.remove(key)
	if had {
		c.trigger(TriggerDelete, key, nil)
	}
	return opResult{ok: had}, nil
}

func collectionClear(c *Collection, _ opArgs) (opResult, error) {
	hadItems := c.target.size() != 0
	c.target.clear()
	if hadItems {
		c.trigger(TriggerClear, nil, nil)
	}
	return opResult{ok: hadItems}, nil
}

func rejectWrite(c *Collection, a opArgs) (opResult, error) {
	return opResult{}, c.rt.reject("R001", ErrReadonly, "write %v on %T", a.key, c.raw)
}

func rejectDelete(c *Collection, a opArgs) (opResult, error) {
	return opResult{}, c.rt.reject("R002", ErrReadonly, "delete %v on %T", a.key, c.raw)
}

// delegate runs op directly on the plain target without tracking or
// triggering.
func delegate(c *Collection, op Op, a opArgs) (opResult, error) {
	t := c.target
	switch op {
	case OpGet:
		v, ok, err := t.get(a.key)
		return opResult{value: v, ok: ok}, err
	case OpHas:
		return opResult{ok: t.has(a.key)}, nil
	case OpSize:
		return opResult{n: t.size()}, nil
	case OpRange:
		if a.each != nil {
			t.each(a.each)
		}
		return opResult{}, nil
	}
	return opResult{}, c.unsupported(op)
}

// =============================================================================
// Plain targets
// =============================================================================

type orderedMapTarget struct {
	m *orderedmap.OrderedMap[any, any]
}

func (t orderedMapTarget) get(key any) (any, bool, error) {
	v, ok := t.m.Get(key)
	return v, ok, nil
}

func (t orderedMapTarget) set(key, value any) (any, bool, error) {
	old, had := t.m.Set(key, value)
	return old, had, nil
}

func (t orderedMapTarget) add(any) (bool, error) {
	return false, ErrUnsupported
}

func (t orderedMapTarget) has(key any) bool {
	_, ok := t.m.Get(key)
	return ok
}

func (t orderedMapTarget) remove(key any) (any, bool) {
	return t.m.Delete(key)
}

func (t orderedMapTarget) clear() {
	keys := make([]any, 0, t.m.Len())
	for p := t.m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	for _, k := range keys {
		t.m.Delete(k)
	}
}

func (t orderedMapTarget) size() int {
	return t.m.Len()
}

func (t orderedMapTarget) each(fn func(key, value any) bool) {
	for p := t.m.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

type hashSetTarget struct {
	s *linkedhashset.Set
}

func (t hashSetTarget) get(any) (any, bool, error) {
	return nil, false, ErrUnsupported
}

func (t hashSetTarget) set(any, any) (any, bool, error) {
	return nil, false, ErrUnsupported
}

func (t hashSetTarget) add(value any) (bool, error) {
	if t.s.Contains(value) {
		return false, nil
	}
	t.s.Add(value)
	return true, nil
}

func (t hashSetTarget) has(key any) bool {
	return t.s.Contains(key)
}

func (t hashSetTarget) remove(key any) (any, bool) {
	if !t.s.Contains(key) {
		return nil, false
	}
	t.s.Remove(key)
	return key, true
}

func (t hashSetTarget) clear() {
	t.s.Clear()
}

func (t hashSetTarget) size() int {
	return t.s.Size()
}

func (t hashSetTarget) each(fn func(key, value any) bool) {
	for _, v := range t.s.Values() {
		if !fn(v, v) {
			return
		}
	}
}
