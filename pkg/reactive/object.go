package reactive

import "sort"

// Object is a handle over a plain record (map[string]any).
type Object struct {
	handle
	target map[string]any
}

// Raw returns the plain record.
func (o *Object) Raw() any {
	return o.target
}

// Get returns the value stored at key, tracking the read. Nested targets
// are wrapped on the way out unless the handle is shallow.
func (o *Object) Get(key string) any {
	v := o.target[key]
	o.track(key)
	return o.wrapChild(v)
}

// Lookup is Get with a presence flag.
func (o *Object) Lookup(key string) (any, bool) {
	v, ok := o.target[key]
	o.track(key)
	return o.wrapChild(v), ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.target[key]
	o.track(key)
	return ok
}

// Keys returns the record's keys in sorted order, tracking enumeration.
func (o *Object) Keys() []string {
	o.track(IterateKey)
	keys := make([]string, 0, len(o.target))
	for k := range o.target {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys, tracking enumeration.
func (o *Object) Len() int {
	o.track(IterateKey)
	return len(o.target)
}

// Range calls fn for each key in sorted order until fn returns false.
func (o *Object) Range(fn func(key string, value any) bool) {
	for _, k := range o.Keys() {
		if !fn(k, o.Get(k)) {
			return
		}
	}
}

// Set stores value at key. Handles passed as values are stored de-proxied.
func (o *Object) Set(key string, value any) error {
	return o.set(key, value, o)
}

// set is the write path with an explicit receiver. Only a receiver whose
// de-proxied identity is this target triggers; a write relayed on behalf of
// another object stores the value but leaves notification to that object.
func (o *Object) set(key string, value any, receiver Handle) error {
	if o.readonly() {
		return o.rt.reject("R001", ErrReadonly, "set %q", key)
	}
	if !o.variant.IsShallow() {
		value = ToRaw(value)
	}
	old, had := o.target[key]
	o.target[key] = value

	if !o.isTarget(receiver) {
		return nil
	}
	if !had {
		o.trigger(TriggerAdd, key, value)
	} else if HasChanged(value, old) {
		o.trigger(TriggerSet, key, value)
	}
	return nil
}

// Delete removes key.
func (o *Object) Delete(key string) error {
	if o.readonly() {
		return o.rt.reject("R002", ErrReadonly, "delete %q", key)
	}
	if _, had := o.target[key]; !had {
		return nil
	}
	delete(o.target, key)
	o.trigger(TriggerDelete, key, nil)
	return nil
}

// Assign copies every entry of values into the record, one Set per key.
func (o *Object) Assign(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := o.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}
