// Package memory is an in-process host tree.
//
// Every adapter call is appended to an op log, which makes the package the
// reference host for renderer tests:
//
//	h := memory.New()
//	app := h.Container("app")
//	...
//	if n := h.Count(memory.OpMove); n != 1 { ... }
//
// The tree can be serialized to HTML and supports simple selectors
// (tag, #id, .class and their combinations) for QuerySelector.
package memory
