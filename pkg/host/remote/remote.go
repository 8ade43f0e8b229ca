// Package remote implements a host.Adapter whose tree lives on a client.
//
// The server keeps a mirror of the client tree (a memory.Host) so the
// renderer can ask for parents and siblings without a round trip, and
// records every mutation as a protocol.HostOp. Flush hands the recorded
// ops out as one OpsFrame; the session writes it to the socket.
package remote

import (
	"fmt"
	"strconv"

	verrors "github.com/vango-dev/vcore/internal/errors"
	"github.com/vango-dev/vcore/pkg/host"
	"github.com/vango-dev/vcore/pkg/host/memory"
	"github.com/vango-dev/vcore/pkg/protocol"
	"github.com/vango-dev/vcore/pkg/vdom"
)

// Host mirrors a client tree and records the ops that keep it in sync.
type Host struct {
	*memory.Host

	seq uint64
	ops []protocol.HostOp
}

var _ host.Adapter = (*Host)(nil)

// New creates a remote host with an empty mirror.
func New() *Host {
	return &Host{Host: memory.New()}
}

func nodeID(n host.Node) uint32 {
	if node, ok := n.(*memory.Node); ok && node != nil {
		return node.ID
	}
	return 0
}

func (h *Host) emit(op protocol.HostOp) {
	h.ops = append(h.ops, op)
}

// CreateElement implements host.Adapter.
func (h *Host) CreateElement(tag string) host.Node {
	n := h.Host.CreateElement(tag)
	h.emit(protocol.HostOp{Code: protocol.OpCreateElement, Node: nodeID(n), Value: tag})
	return n
}

// CreateText implements host.Adapter.
func (h *Host) CreateText(text string) host.Node {
	n := h.Host.CreateText(text)
	h.emit(protocol.HostOp{Code: protocol.OpCreateText, Node: nodeID(n), Value: text})
	return n
}

// CreateComment implements host.Adapter.
func (h *Host) CreateComment(text string) host.Node {
	n := h.Host.CreateComment(text)
	h.emit(protocol.HostOp{Code: protocol.OpCreateComment, Node: nodeID(n), Value: text})
	return n
}

// Insert implements host.Adapter.
func (h *Host) Insert(node, parent, anchor host.Node) {
	h.Host.Insert(node, parent, anchor)
	h.emit(protocol.HostOp{
		Code:   protocol.OpInsert,
		Node:   nodeID(node),
		Parent: nodeID(parent),
		Anchor: nodeID(anchor),
	})
}

// Remove implements host.Adapter.
func (h *Host) Remove(node host.Node) {
	h.Host.Remove(node)
	h.emit(protocol.HostOp{Code: protocol.OpRemove, Node: nodeID(node)})
}

// SetText implements host.Adapter.
func (h *Host) SetText(node host.Node, text string) {
	h.Host.SetText(node, text)
	h.emit(protocol.HostOp{Code: protocol.OpSetText, Node: nodeID(node), Value: text})
}

// SetElementText implements host.Adapter.
func (h *Host) SetElementText(node host.Node, text string) {
	h.Host.SetElementText(node, text)
	h.emit(protocol.HostOp{Code: protocol.OpSetElementText, Node: nodeID(node), Value: text})
}

// PatchAttribute implements host.Adapter. Handlers stay on the server;
// the client only learns which events to forward.
func (h *Host) PatchAttribute(node host.Node, key string, prev, next any) {
	h.Host.PatchAttribute(node, key, prev, next)
	id := nodeID(node)

	if vdom.IsEvent(key) {
		switch {
		case next != nil && prev == nil:
			h.emit(protocol.HostOp{Code: protocol.OpSetHandler, Node: id, Key: key})
		case next == nil:
			h.emit(protocol.HostOp{Code: protocol.OpRemoveHandler, Node: id, Key: key})
		}
		return
	}

	value, ok := attrValue(next)
	if !ok {
		h.emit(protocol.HostOp{Code: protocol.OpRemoveAttr, Node: id, Key: key})
		return
	}
	h.emit(protocol.HostOp{Code: protocol.OpSetAttr, Node: id, Key: key, Value: value})
}

// attrValue renders an attribute value for the wire. False and nil remove
// the attribute; true is present with an empty value.
func attrValue(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case bool:
		return "", v
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// Pending reports how many ops are waiting for Flush.
func (h *Host) Pending() int {
	return len(h.ops)
}

// Flush returns the ops recorded since the last flush as one frame, or nil
// when nothing changed. The mirror's own op log is cleared as well.
func (h *Host) Flush() *protocol.OpsFrame {
	if len(h.ops) == 0 {
		return nil
	}
	h.seq++
	f := &protocol.OpsFrame{Seq: h.seq, Ops: h.ops}
	h.ops = nil
	h.Host.ResetOps()
	return f
}

// HandleEvent dispatches a client event to the handler bound on the
// target node. Unknown node ids yield a P002 error.
func (h *Host) HandleEvent(ev *protocol.Event) error {
	node := h.NodeByID(ev.Node)
	if node == nil {
		return verrors.New("P002").WithDetailf("event %q on node %d", ev.Name, ev.Node)
	}
	return h.Dispatch(node, ev.Name, ev.Payload)
}
