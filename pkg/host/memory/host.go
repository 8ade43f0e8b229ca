package memory

import (
	"fmt"

	"github.com/vango-dev/vcore/pkg/host"
	"github.com/vango-dev/vcore/pkg/vdom"
)

// OpKind identifies a recorded adapter call.
type OpKind uint8

const (
	OpCreate OpKind = iota
	OpInsert
	OpMove
	OpRemove
	OpSetText
	OpSetElementText
	OpSetAttr
	OpRemoveAttr
)

// String returns the op name.
func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpInsert:
		return "insert"
	case OpMove:
		return "move"
	case OpRemove:
		return "remove"
	case OpSetText:
		return "setText"
	case OpSetElementText:
		return "setElementText"
	case OpSetAttr:
		return "setAttr"
	case OpRemoveAttr:
		return "removeAttr"
	default:
		return "unknown"
	}
}

// Op is one recorded adapter call.
type Op struct {
	Kind   OpKind
	Node   *Node
	Parent *Node
	Anchor *Node
	Key    string
	Value  any
}

func (o Op) String() string {
	switch o.Kind {
	case OpInsert, OpMove:
		return fmt.Sprintf("%s #%d into #%d", o.Kind, o.Node.ID, o.Parent.ID)
	case OpSetAttr, OpRemoveAttr:
		return fmt.Sprintf("%s #%d %s", o.Kind, o.Node.ID, o.Key)
	default:
		return fmt.Sprintf("%s #%d", o.Kind, o.Node.ID)
	}
}

// Host is an in-memory host.Adapter.
type Host struct {
	doc    *Node
	nextID uint32
	nodes  map[uint32]*Node
	ops    []Op
}

var _ host.Adapter = (*Host)(nil)

// New creates a host with an empty document.
func New() *Host {
	h := &Host{nodes: make(map[uint32]*Node)}
	h.doc = h.newNode(DocumentNode)
	return h
}

func (h *Host) newNode(t NodeType) *Node {
	h.nextID++
	n := &Node{ID: h.nextID, Type: t}
	h.nodes[n.ID] = n
	return n
}

// Document returns the document node.
func (h *Host) Document() *Node {
	return h.doc
}

// Container appends <div id="id"> to the document without recording ops
// and returns it.
func (h *Host) Container(id string) *Node {
	n := h.newNode(ElementNode)
	n.Tag = "div"
	n.Attrs = map[string]any{"id": id}
	n.Parent = h.doc
	h.doc.Children = append(h.doc.Children, n)
	return n
}

// NodeByID returns the node with the given id, or nil.
func (h *Host) NodeByID(id uint32) *Node {
	return h.nodes[id]
}

func (h *Host) record(op Op) {
	h.ops = append(h.ops, op)
}

func asNode(n host.Node) *Node {
	if n == nil {
		return nil
	}
	node, _ := n.(*Node)
	return node
}

// CreateElement implements host.Adapter.
func (h *Host) CreateElement(tag string) host.Node {
	n := h.newNode(ElementNode)
	n.Tag = tag
	h.record(Op{Kind: OpCreate, Node: n, Value: tag})
	return n
}

// CreateText implements host.Adapter.
func (h *Host) CreateText(text string) host.Node {
	n := h.newNode(TextNode)
	n.Text = text
	h.record(Op{Kind: OpCreate, Node: n, Value: text})
	return n
}

// CreateComment implements host.Adapter.
func (h *Host) CreateComment(text string) host.Node {
	n := h.newNode(CommentNode)
	n.Text = text
	h.record(Op{Kind: OpCreate, Node: n, Value: text})
	return n
}

// Insert implements host.Adapter. Inserting an attached node records a
// move.
func (h *Host) Insert(node, parent, anchor host.Node) {
	n, p, a := asNode(node), asNode(parent), asNode(anchor)
	if n == nil || p == nil {
		return
	}
	kind := OpInsert
	if n.Parent != nil {
		kind = OpMove
		n.detach()
	}
	i := len(p.Children)
	if a != nil && a.Parent == p {
		i = p.indexOf(a)
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[i+1:], p.Children[i:])
	p.Children[i] = n
	n.Parent = p
	h.record(Op{Kind: kind, Node: n, Parent: p, Anchor: a})
}

// Remove implements host.Adapter.
func (h *Host) Remove(node host.Node) {
	n := asNode(node)
	if n == nil {
		return
	}
	n.detach()
	h.record(Op{Kind: OpRemove, Node: n})
}

// SetText implements host.Adapter.
func (h *Host) SetText(node host.Node, text string) {
	n := asNode(node)
	if n == nil {
		return
	}
	n.Text = text
	h.record(Op{Kind: OpSetText, Node: n, Value: text})
}

// SetElementText implements host.Adapter. It replaces all children.
func (h *Host) SetElementText(node host.Node, text string) {
	n := asNode(node)
	if n == nil {
		return
	}
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
	if text != "" {
		t := h.newNode(TextNode)
		t.Text = text
		t.Parent = n
		n.Children = []*Node{t}
	}
	h.record(Op{Kind: OpSetElementText, Node: n, Value: text})
}

// PatchAttribute implements host.Adapter.
func (h *Host) PatchAttribute(node host.Node, key string, _, next any) {
	n := asNode(node)
	if n == nil {
		return
	}
	if next == nil {
		delete(n.Attrs, key)
		h.record(Op{Kind: OpRemoveAttr, Node: n, Key: key})
		return
	}
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	n.Attrs[key] = next
	h.record(Op{Kind: OpSetAttr, Node: n, Key: key, Value: next})
}

// ParentOf implements host.Adapter.
func (h *Host) ParentOf(node host.Node) host.Node {
	if n := asNode(node); n != nil && n.Parent != nil {
		return n.Parent
	}
	return nil
}

// NextSiblingOf implements host.Adapter.
func (h *Host) NextSiblingOf(node host.Node) host.Node {
	if n := asNode(node); n != nil {
		if s := n.NextSibling(); s != nil {
			return s
		}
	}
	return nil
}

// QuerySelector implements host.Adapter.
func (h *Host) QuerySelector(selector string) host.Node {
	if n := h.Query(selector); n != nil {
		return n
	}
	return nil
}

// Query returns the first element matching selector, or nil.
func (h *Host) Query(selector string) *Node {
	sel, ok := parseSelector(selector)
	if !ok {
		return nil
	}
	var found *Node
	h.doc.walk(func(n *Node) bool {
		if sel.matches(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Dispatch invokes the handler bound for event on node.
func (h *Host) Dispatch(node *Node, event string, payload any) error {
	if node == nil {
		return fmt.Errorf("memory: dispatch %q on nil node", event)
	}
	return host.Invoke(node.Attrs[vdom.EventProp(event)], host.Event{
		Type:    event,
		Target:  node,
		Payload: payload,
	})
}

// Ops returns the recorded ops.
func (h *Host) Ops() []Op {
	return h.ops
}

// ResetOps clears the op log.
func (h *Host) ResetOps() {
	h.ops = nil
}

// Count returns how many recorded ops have the given kind.
func (h *Host) Count(kind OpKind) int {
	n := 0
	for _, op := range h.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
