package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment node. Renderers use comments as placeholders
// for nodes that render nothing.
func Comment(data string) *VNode {
	return &VNode{
		Kind: KindComment,
		Text: data,
	}
}

// Fragment groups children without a wrapper element. A Key attribute
// among the children keys the fragment itself.
func Fragment(children ...any) *VNode {
	node := &VNode{
		Kind:  KindFragment,
		Props: make(Props),
	}
	applyArgs(node, children)
	if len(node.Props) == 0 {
		node.Props = nil
	}
	return node
}

// Comp creates a component node. Arguments are folded into its props the
// same way element arguments are; child nodes are ignored.
func Comp(c Component, args ...any) *VNode {
	node := &VNode{
		Kind:  KindComponent,
		Comp:  c,
		Props: make(Props),
	}
	applyArgs(node, args)
	node.Children = nil
	return node
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Repeat creates n nodes using the given function.
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	if n <= 0 {
		return nil
	}
	result := make([]*VNode, 0, n)
	for i := 0; i < n; i++ {
		node := fn(i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}
