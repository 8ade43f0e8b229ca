// Package renderer reconciles snapshot trees (vdom.VNode) into a host tree
// and runs components.
//
// Each component instance owns a render effect. Reactive writes do not
// re-render synchronously: the effect's scheduler enqueues the instance
// job, and the queue flush re-renders every dirty instance once, parents
// first. A re-render patches the new tree against the previous one,
// reusing host nodes of the same kind and key. Keyed child lists move only
// the nodes outside the longest increasing run of old positions.
//
//	rt := reactive.NewRuntime()
//	q := scheduler.New()
//	r := renderer.New(memory.New(), rt, q)
//	app := r.CreateApp(Counter, nil)
//	if _, err := app.Mount("#app"); err != nil {
//	    return err
//	}
//
// Components see their declared props through a tracked readonly handle,
// raise events with Emit, register lifecycle hooks and watchers during
// Setup, and may be cached across switches with KeepAlive.
package renderer
