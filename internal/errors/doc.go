// Package errors provides structured, coded diagnostics for vcore.
//
// Every diagnostic the runtime can emit has a registered code (e.g. "R001")
// that maps to a category, a short message and a longer explanation. The
// reactive layer, the scheduler and the renderer never panic for expected
// misuse; they log one of these errors through slog and carry on.
//
// # Error Categories
//
//   - reactive: readonly violations, unsupported collection operations
//   - scheduler: job failures and runaway update loops
//   - render: key collisions and invalid render output
//   - protocol: wire frame decoding problems
//   - config: configuration file problems
//
// # Usage
//
//	err := errors.New("R001").
//	    WithDetail(`set "count" on readonly object`).
//	    Wrap(reactive.ErrReadonly)
//
//	logger.Warn(err.Message, err.Attrs()...)
package errors
