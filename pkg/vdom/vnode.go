package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindComment                // Comment placeholder
	KindFragment               // Grouping without wrapper
	KindComponent              // Nested component
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Flags carry renderer state that must survive on the node itself.
type Flags uint8

const (
	// FlagShouldKeepAlive marks a component node whose unmount is turned
	// into a deactivation by its keep-alive parent.
	FlagShouldKeepAlive Flags = 1 << iota

	// FlagKeptAlive marks a component node whose instance comes from a
	// keep-alive cache and must be reactivated instead of mounted.
	FlagKeptAlive
)

// VNode is one node of a snapshot tree.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag name (e.g., "div")
	Props    Props     // Attributes and event handlers
	Children []*VNode  // Child nodes
	Key      any       // Reconciliation key, nil for positional matching
	Text     string    // Text, comment data, or element text content
	Comp     Component // For KindComponent

	// Set by the renderer.
	El       any   // Host node; the start anchor for fragments
	Anchor   any   // End anchor for fragments
	Instance any   // Component instance for KindComponent
	Flags    Flags // Keep-alive state
}

// Props holds attributes and event handlers.
type Props map[string]any

// Clone returns a copy of props.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// IsEvent reports whether key names an event handler prop ("onclick").
func IsEvent(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "on")
}

// HasKey reports whether the node carries an explicit key.
func (v *VNode) HasKey() bool {
	return v.Key != nil
}

// HasTextContent reports whether an element uses text-content mode: no
// child nodes, with its text set directly on the host element.
func (v *VNode) HasTextContent() bool {
	return v.Kind == KindElement && len(v.Children) == 0 && v.Text != ""
}

// IsInteractive returns true if this element has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if IsEvent(key) {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy of the node without renderer state, so one
// snapshot node can be mounted in two places.
func (v *VNode) Clone() *VNode {
	c := *v
	c.El, c.Anchor, c.Instance = nil, nil, nil
	c.Flags = 0
	c.Props = v.Props.Clone()
	if v.Children != nil {
		c.Children = make([]*VNode, len(v.Children))
		for i, child := range v.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// IsSameType reports whether the renderer may patch a into b in place:
// same kind, same key, and same tag or component.
func IsSameType(a, b *VNode) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind || a.Key != b.Key {
		return false
	}
	switch a.Kind {
	case KindElement:
		return a.Tag == b.Tag
	case KindComponent:
		return a.Comp == b.Comp
	}
	return true
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // Function to call
}

// Component is the definition a component node refers to. The renderer
// supplies the concrete type.
type Component interface {
	ComponentName() string
}
