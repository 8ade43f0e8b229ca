// Package vdom defines the snapshot tree produced by render functions.
//
// A VNode is one of five kinds: element, text, comment, fragment or
// component. Render functions build trees with variadic factory functions:
//
//	Div(Class("card"), Key(item.ID),
//	    H1("Title"),
//	    P(Textf("count: %d", n)),
//	    OnClick(handler),
//	)
//
// Nodes carry an optional Key used to match siblings across renders. Two
// nodes are the same type when their kind, key and tag (or component)
// match; the renderer reuses host nodes only between same-type nodes.
//
// Once mounted, the renderer records the host node in El (and, for
// fragments, the end anchor in Anchor). A snapshot is retained only until
// the next patch of its owner completes.
package vdom
