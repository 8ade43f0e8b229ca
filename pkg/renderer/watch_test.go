package renderer

import (
	"fmt"
	"testing"

	"github.com/vango-dev/vcore/pkg/reactive"
	"github.com/vango-dev/vcore/pkg/vdom"
)

func TestWatchGetter(t *testing.T) {
	f := newFixture(t)
	store := f.r.Runtime().Reactive(map[string]any{"n": 0}).(*reactive.Object)

	var calls []string
	stop := f.r.Watch(func() any { return store.Get("n") }, func(v, old any, _ func(func())) {
		calls = append(calls, fmt.Sprintf("%v<-%v", v, old))
	})

	if len(calls) != 0 {
		t.Fatalf("callback ran before any change: %v", calls)
	}
	_ = store.Set("n", 1)
	_ = store.Set("n", 2)
	if len(calls) != 0 {
		t.Fatal("pre watcher ran before the flush")
	}
	f.r.Queue().Flush()
	if len(calls) != 1 || calls[0] != "2<-0" {
		t.Errorf("calls = %v, want [2<-0]", calls)
	}

	// A write that ends on the old value is not a change.
	_ = store.Set("n", 3)
	_ = store.Set("n", 2)
	f.r.Queue().Flush()
	if len(calls) != 1 {
		t.Errorf("calls = %v, want one call", calls)
	}

	stop()
	_ = store.Set("n", 4)
	f.r.Queue().Flush()
	if len(calls) != 1 {
		t.Errorf("stopped watcher ran: %v", calls)
	}
}

func TestWatchImmediate(t *testing.T) {
	f := newFixture(t)
	ref := reactive.NewRef(f.r.Runtime(), "a")

	var calls []string
	f.r.Watch(func() any { return ref.Get() }, func(v, old any, _ func(func())) {
		calls = append(calls, fmt.Sprintf("%v<-%v", v, old))
	}, Immediate())

	ref.Set("b")
	f.r.Queue().Flush()

	want := []string{"a<-<nil>", "b<-a"}
	if fmt.Sprint(calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestWatchDeepHandle(t *testing.T) {
	f := newFixture(t)
	store := f.r.Runtime().Reactive(map[string]any{
		"user": map[string]any{"name": "ann"},
	}).(*reactive.Object)

	calls := 0
	f.r.Watch(store, func(v, _ any, _ func(func())) {
		calls++
		if v != any(store) {
			t.Errorf("value = %v, want the watched handle", v)
		}
	})

	user := store.Get("user").(*reactive.Object)
	_ = user.Set("name", "bob")
	f.r.Queue().Flush()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWatchMultipleSources(t *testing.T) {
	f := newFixture(t)
	rt := f.r.Runtime()
	a := reactive.NewRef(rt, 1)
	b := reactive.NewRef(rt, "x")

	var got []any
	f.r.Watch([]any{
		func() any { return a.Get() },
		func() any { return b.Get() },
	}, func(v, _ any, _ func(func())) {
		got = v.([]any)
	})

	b.Set("y")
	f.r.Queue().Flush()
	if len(got) != 2 || got[0] != 1 || got[1] != "y" {
		t.Errorf("value = %v, want [1 y]", got)
	}
}

func TestWatchCleanup(t *testing.T) {
	f := newFixture(t)
	ref := reactive.NewRef(f.r.Runtime(), 0)

	var log []string
	stop := f.r.Watch(func() any { return ref.Get() }, func(v, _ any, onCleanup func(func())) {
		log = append(log, fmt.Sprintf("run %v", v))
		onCleanup(func() { log = append(log, fmt.Sprintf("cleanup %v", v)) })
	})

	ref.Set(1)
	f.r.Queue().Flush()
	ref.Set(2)
	f.r.Queue().Flush()
	stop()

	want := "[run 1 cleanup 1 run 2 cleanup 2]"
	if fmt.Sprint(log) != want {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestWatchFlushTimings(t *testing.T) {
	f := newFixture(t)
	f.render(vdom.Comp(counterComponent()))
	inst := f.root.Children[0]
	state := f.r.roots[f.root].Instance.(*Instance).State().(*reactive.Object)
	count := func() any { return state.Get("count") }

	var seen []string
	f.r.Watch(count, func(any, any, func(func())) {
		seen = append(seen, "pre:"+f.html())
	})
	f.r.Watch(count, func(any, any, func(func())) {
		seen = append(seen, "post:"+f.html())
	}, Flush(FlushPost))
	f.r.Watch(count, func(any, any, func(func())) {
		seen = append(seen, "sync:"+f.html())
	}, Flush(FlushSync))

	if err := f.h.Dispatch(inst, "click", nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	f.r.Queue().Flush()

	want := []string{
		"sync:<div>count: 0</div>",
		"pre:<div>count: 0</div>",
		"post:<div>count: 1</div>",
	}
	if fmt.Sprint(seen) != fmt.Sprint(want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
}

func TestWatchEffect(t *testing.T) {
	f := newFixture(t)
	ref := reactive.NewRef(f.r.Runtime(), "a")

	var seen []string
	cleanups := 0
	stop := f.r.WatchEffect(func(onCleanup func(func())) {
		seen = append(seen, ref.Get())
		onCleanup(func() { cleanups++ })
	})
	if fmt.Sprint(seen) != "[a]" {
		t.Fatalf("seen = %v, want [a]", seen)
	}

	ref.Set("b")
	f.r.Queue().Flush()
	if fmt.Sprint(seen) != "[a b]" {
		t.Errorf("seen = %v, want [a b]", seen)
	}
	if cleanups != 1 {
		t.Errorf("cleanups = %d, want 1", cleanups)
	}

	stop()
	if cleanups != 2 {
		t.Errorf("cleanups after stop = %d, want 2", cleanups)
	}
	ref.Set("c")
	f.r.Queue().Flush()
	if len(seen) != 2 {
		t.Errorf("stopped effect ran: %v", seen)
	}
}

func TestInstanceWatchStopsOnUnmount(t *testing.T) {
	f := newFixture(t)
	ref := reactive.NewRef(f.r.Runtime(), 0)
	calls := 0

	comp := &Component{
		Name: "Watcher",
		Setup: func(ctx *Instance) any {
			ctx.Watch(func() any { return ref.Get() }, func(any, any, func(func())) { calls++ })
			return nil
		},
		Render: func(*Instance) *vdom.VNode { return vdom.Span() },
	}

	f.render(vdom.Comp(comp))
	ref.Set(1)
	f.r.Queue().Flush()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	f.r.Render(nil, f.root)
	ref.Set(2)
	f.r.Queue().Flush()
	if calls != 1 {
		t.Errorf("calls after unmount = %d, want 1", calls)
	}
}

func TestWatchInvalidSource(t *testing.T) {
	f := newFixture(t)
	stop := f.r.Watch(42, func(any, any, func(func())) {
		t.Error("callback ran for an invalid source")
	})
	stop()
}
