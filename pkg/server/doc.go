// Package server hosts vcore apps over WebSocket.
//
// Every connection gets its own session: a reactive runtime, a scheduler
// queue driven by a single-goroutine loop, and a renderer whose host is a
// remote.Host mirroring the client tree. The session mounts the root
// component into a container node, then streams the recorded host ops to
// the client as one Ops frame per flush. Inbound Event frames name a node
// and an event; the session dispatches the bound handler on its loop.
//
// # Wire sequence
//
//	server → client  Hello{SessionID, Root}
//	server → client  Ops{Seq: 1, ...}        initial mount
//	client → server  Event{Node, "click"}
//	server → client  Ops{Seq: 2, ...}        resulting patch
//
// Malformed frames are answered with a P001 error frame and events aimed at
// unknown nodes with P002; neither closes the session.
//
// # Routes
//
//	GET /ws        WebSocket sessions (Config.WebSocketPath)
//	GET /metrics   Prometheus metrics (Config.MetricsPath)
//	GET /healthz   liveness probe
//
// # Usage
//
//	srv := server.New(counter, server.WithLogger(logger))
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
