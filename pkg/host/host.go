// Package host defines the adapter the renderer drives to build and update
// a concrete node tree.
//
// The renderer never inspects host nodes; it only passes back what the
// adapter returned. Implementations live in subpackages: memory keeps a
// tree in process, remote mirrors one over the wire.
package host

import "fmt"

// Node is an opaque host node.
type Node = any

// Adapter creates and rearranges host nodes.
type Adapter interface {
	CreateElement(tag string) Node
	CreateText(text string) Node
	CreateComment(text string) Node

	// Insert places node under parent before anchor, or last when anchor
	// is nil. Inserting a node that already has a parent moves it.
	Insert(node, parent, anchor Node)

	// Remove detaches node from its parent.
	Remove(node Node)

	SetText(node Node, text string)
	SetElementText(node Node, text string)

	// PatchAttribute applies one attribute change. A nil next removes the
	// attribute. Keys starting with "on" carry event handlers.
	PatchAttribute(node Node, key string, prev, next any)

	ParentOf(node Node) Node
	NextSiblingOf(node Node) Node
	QuerySelector(selector string) Node
}

// Event is delivered to handlers bound through PatchAttribute.
type Event struct {
	Type    string
	Target  Node
	Payload any
}

// Invoke calls an event handler of one of the supported shapes.
func Invoke(handler any, ev Event) error {
	switch h := handler.(type) {
	case func():
		h()
	case func(Event):
		h(ev)
	case func(any):
		h(ev.Payload)
	case func(string):
		s, _ := ev.Payload.(string)
		h(s)
	case []any:
		for _, each := range h {
			if err := Invoke(each, ev); err != nil {
				return err
			}
		}
	case nil:
		return fmt.Errorf("host: no handler for %q", ev.Type)
	default:
		return fmt.Errorf("host: unsupported handler type %T for %q", handler, ev.Type)
	}
	return nil
}
