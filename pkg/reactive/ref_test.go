package reactive

import (
	"errors"
	"testing"
)

func TestRef(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, 0)

	runs := 0
	rt.NewEffect(func() {
		runs++
		r.Get()
	})

	r.Set(0)
	if runs != 1 {
		t.Errorf("runs after same value = %d, want 1", runs)
	}
	r.Set(1)
	r.Update(func(n int) int { return n + 1 })
	if runs != 3 {
		t.Errorf("runs = %d, want 3", runs)
	}
	if got := r.Peek(); got != 2 {
		t.Errorf("Peek = %d, want 2", got)
	}
}

func TestRefWrapsDeep(t *testing.T) {
	rt := NewRuntime()
	r := NewRef[any](rt, map[string]any{"x": 1})

	obj, ok := r.Get().(*Object)
	if !ok {
		t.Fatalf("Get = %T, want *Object", r.Get())
	}

	runs := 0
	rt.NewEffect(func() {
		runs++
		r.Get().(*Object).Get("x")
	})
	_ = obj.Set("x", 2)
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}

	shallow := NewShallowRef[any](rt, map[string]any{})
	if _, ok := shallow.Get().(map[string]any); !ok {
		t.Errorf("shallow Get = %T, want map[string]any", shallow.Get())
	}
}

func TestTypedRefValue(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, map[string]any{"x": 1})
	if _, ok := r.Value().(*Object); !ok {
		t.Errorf("Value = %T, want *Object", r.Value())
	}
}

func TestToRefs(t *testing.T) {
	rt := NewRuntime()
	obj := rt.Reactive(map[string]any{"a": 1, "b": 2}).(*Object)
	refs := ToRefs(obj)
	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2", len(refs))
	}
	_ = refs["a"].Set(10)
	if obj.Get("a") != 10 {
		t.Errorf("a = %v, want 10", obj.Get("a"))
	}
}

func TestComputedMemoizes(t *testing.T) {
	rt := NewRuntime()
	state := rt.Reactive(map[string]any{"n": 1}).(*Object)

	calls := 0
	double := NewComputed(rt, func() int {
		calls++
		return state.Get("n").(int) * 2
	})

	if calls != 0 {
		t.Fatalf("calls before read = %d, want 0", calls)
	}
	for i := 0; i < 3; i++ {
		if got := double.Get(); got != 2 {
			t.Errorf("Get = %d, want 2", got)
		}
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	_ = state.Set("n", 2)
	_ = state.Set("n", 3)
	if !double.Dirty() {
		t.Error("Dirty() = false after source write")
	}
	if calls != 1 {
		t.Errorf("calls before re-read = %d, want 1", calls)
	}
	if got := double.Get(); got != 6 {
		t.Errorf("Get = %d, want 6", got)
	}
	double.Get()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestComputedChain(t *testing.T) {
	rt := NewRuntime()
	src := NewRef(rt, 1)
	plusOne := NewComputed(rt, func() int { return src.Get() + 1 })
	times := NewComputed(rt, func() int { return plusOne.Get() * 10 })

	var seen []int
	rt.NewEffect(func() { seen = append(seen, times.Get()) })

	src.Set(2)
	if len(seen) != 2 || seen[1] != 30 {
		t.Errorf("seen = %v, want [20 30]", seen)
	}
}

func TestEffectReadsFreshComputed(t *testing.T) {
	rt := NewRuntime()
	src := NewRef(rt, 1)
	useDerived := NewRef(rt, false)

	// The effect is created before the derived value it reads, so it sorts
	// ahead of it in every run set.
	var derived *Computed[int]
	var seen []int
	rt.NewEffect(func() {
		src.Get()
		if useDerived.Get() {
			seen = append(seen, derived.Get())
		}
	})
	derived = NewComputed(rt, func() int { return src.Get() * 10 })

	useDerived.Set(true)
	if len(seen) != 1 || seen[0] != 10 {
		t.Fatalf("seen = %v, want [10]", seen)
	}

	seen = nil
	src.Set(2)
	if len(seen) != 1 || seen[0] != 20 {
		t.Errorf("seen = %v, want [20]", seen)
	}
}

func TestComputedRetriesAfterPanic(t *testing.T) {
	rt := NewRuntime()
	calls := 0
	c := NewComputed(rt, func() int {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return 7
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Get did not panic")
			}
		}()
		c.Get()
	}()
	if !c.Dirty() {
		t.Error("Dirty() = false after a failed recompute")
	}
	if got := c.Get(); got != 7 {
		t.Errorf("Get = %d, want 7", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestWritableComputed(t *testing.T) {
	rt := NewRuntime()
	src := NewRef(rt, 1)
	c := NewWritableComputed(rt, func() int { return src.Get() }, func(v int) { src.Set(v) })
	if err := c.Set(5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := c.Get(); got != 5 {
		t.Errorf("Get = %d, want 5", got)
	}

	ro := NewComputed(rt, func() int { return 1 })
	if err := ro.Set(2); !errors.Is(err, ErrReadonly) {
		t.Errorf("Set err = %v, want ErrReadonly", err)
	}
}
