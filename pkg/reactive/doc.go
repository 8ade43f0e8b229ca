// Package reactive provides the dependency-tracking core for vcore.
//
// Application code mutates plain Go data through reactive handles; every read
// made while a computation is running subscribes that computation to the
// location it read, and every write re-runs (or schedules) exactly the
// computations that read the written location.
//
// # Runtime
//
// All state lives in an explicit *Runtime: the stack of active computations,
// the tracking-enabled guard stack, the location -> subscribers map and the
// handle caches. A Runtime is confined to one goroutine (a session event
// loop in the server); it takes no locks.
//
//	rt := reactive.NewRuntime()
//	state := rt.Reactive(map[string]any{"count": 0}).(*reactive.Object)
//
//	rt.NewEffect(func() {
//	    fmt.Println("count is", state.Get("count"))
//	})
//	state.Set("count", 1) // prints "count is 1"
//
// # Handles
//
// Four variants exist for every plain target: mutable or readonly, deep or
// shallow. Supported targets are map[string]any (*Object), *[]any (*Array),
// *orderedmap.OrderedMap[any, any] and *linkedhashset.Set (*Collection).
// Wrapping is idempotent per (target, variant); ToRaw always returns the
// plain target.
//
// # Refs and derived values
//
// Ref[T] is a single reactive cell. Computed[T] is a lazily memoized derived
// value: source writes only mark it dirty and notify its readers, and the
// getter runs again on the next read.
//
//	doubled := reactive.NewComputed(rt, func() int {
//	    return state.Get("count").(int) * 2
//	})
package reactive
