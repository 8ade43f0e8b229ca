// Package protocol implements the binary wire format between a session
// and a remote host.
//
// Every message is one frame: a type byte, a varint payload length and the
// payload. Payloads use varints for integers and length-prefixed strings.
//
//	┌────────────┬──────────────────┬──────────────────────┐
//	│ Frame Type │ Payload Length   │ Payload              │
//	│ (1 byte)   │ (uvarint)        │ (length bytes)       │
//	└────────────┴──────────────────┴──────────────────────┘
//
// The server sends one FrameOps frame per flush carrying the host
// operations that flush produced, in order. The client sends FrameEvent
// frames naming the target node id and event; the server dispatches the
// bound handler on the session loop.
//
// Decoding is defensive: string lengths and collection counts are bounded
// (DefaultMaxAllocation, MaxCollectionCount) and truncated input fails
// with io.ErrUnexpectedEOF.
package protocol
