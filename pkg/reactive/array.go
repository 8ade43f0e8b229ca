package reactive

// Array is a handle over a plain sequence (*[]any).
type Array struct {
	handle
	target *[]any
}

// Raw returns the plain sequence pointer.
func (a *Array) Raw() any {
	return a.target
}

// Len returns the sequence length, tracking the length location.
func (a *Array) Len() int {
	a.track(LengthKey)
	return len(*a.target)
}

// At returns the item at i, tracking that index. Out-of-range reads return nil.
func (a *Array) At(i int) any {
	a.track(i)
	items := *a.target
	if i < 0 || i >= len(items) {
		return nil
	}
	return a.wrapChild(items[i])
}

// Set stores v at index i, growing the sequence with nils if i is past the end.
func (a *Array) Set(i int, v any) error {
	if a.readonly() {
		return a.rt.reject("R001", ErrReadonly, "set index %d", i)
	}
	if i < 0 {
		return nil
	}
	if !a.variant.IsShallow() {
		v = ToRaw(v)
	}
	items := *a.target
	if i < len(items) {
		old := items[i]
		items[i] = v
		if HasChanged(v, old) {
			a.trigger(TriggerSet, i, v)
		}
		return nil
	}
	for len(items) < i {
		items = append(items, nil)
	}
	*a.target = append(items, v)
	a.trigger(TriggerAdd, i, v)
	return nil
}

// SetLen truncates or extends the sequence. Truncation notifies readers of
// every removed index as well as the length.
func (a *Array) SetLen(n int) error {
	if a.readonly() {
		return a.rt.reject("R001", ErrReadonly, "set length %d", n)
	}
	if n < 0 {
		n = 0
	}
	items := *a.target
	if n == len(items) {
		return nil
	}
	if n < len(items) {
		clear(items[n:])
		*a.target = items[:n]
	} else {
		*a.target = append(items, make([]any, n-len(items))...)
	}
	a.trigger(TriggerSet, LengthKey, n)
	return nil
}

// Push appends values. Internal length reads are not tracked, so an effect
// that pushes does not subscribe itself to the length it changes.
func (a *Array) Push(values ...any) error {
	if a.readonly() {
		return a.rt.reject("R001", ErrReadonly, "push")
	}
	defer a.rt.PauseTracking()()
	for _, v := range values {
		if err := a.Set(a.Len(), v); err != nil {
			return err
		}
	}
	return nil
}

// Pop removes and returns the last item.
func (a *Array) Pop() (any, error) {
	if a.readonly() {
		return nil, a.rt.reject("R001", ErrReadonly, "pop")
	}
	defer a.rt.PauseTracking()()
	n := a.Len()
	if n == 0 {
		return nil, nil
	}
	last := a.At(n - 1)
	return last, a.SetLen(n - 1)
}

// Insert inserts values at index i, shifting later items right.
func (a *Array) Insert(i int, values ...any) error {
	if a.readonly() {
		return a.rt.reject("R001", ErrReadonly, "insert at %d", i)
	}
	defer a.rt.PauseTracking()()
	n := a.Len()
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	shift := len(values)
	for j := n - 1; j >= i; j-- {
		if err := a.Set(j+shift, (*a.target)[j]); err != nil {
			return err
		}
	}
	for k, v := range values {
		if err := a.Set(i+k, v); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAt removes and returns the item at index i, shifting later items left.
func (a *Array) RemoveAt(i int) (any, error) {
	if a.readonly() {
		return nil, a.rt.reject("R002", ErrReadonly, "remove index %d", i)
	}
	defer a.rt.PauseTracking()()
	n := a.Len()
	if i < 0 || i >= n {
		return nil, nil
	}
	removed := a.wrapChild((*a.target)[i])
	for j := i; j < n-1; j++ {
		if err := a.Set(j, (*a.target)[j+1]); err != nil {
			return nil, err
		}
	}
	return removed, a.SetLen(n - 1)
}

// IndexOf returns the first index holding v, or -1. Handles passed as v are
// matched against the raw items they wrap.
func (a *Array) IndexOf(v any) int {
	n := a.Len()
	for i := 0; i < n; i++ {
		a.track(i)
	}
	raw := ToRaw(v)
	for i, item := range *a.target {
		if SameValue(item, v) || SameValue(item, raw) {
			return i
		}
	}
	return -1
}

// Includes reports whether v is present.
func (a *Array) Includes(v any) bool {
	return a.IndexOf(v) >= 0
}

// Range calls fn for each index until fn returns false.
func (a *Array) Range(fn func(i int, v any) bool) {
	n := a.Len()
	for i := 0; i < n; i++ {
		if !fn(i, a.At(i)) {
			return
		}
	}
}

// Values returns a copy of the items, each wrapped as At would.
func (a *Array) Values() []any {
	out := make([]any, 0, len(*a.target))
	a.Range(func(_ int, v any) bool {
		out = append(out, v)
		return true
	})
	return out
}
