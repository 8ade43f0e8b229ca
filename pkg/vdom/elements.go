package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// H creates an element with the given tag.
// Arguments can be: nil, Attr, []Attr, Props, EventHandler, *VNode, []*VNode,
// string (a text child) or TextContent.
func H(tag string, args ...any) *VNode {
	return createElement(tag, args)
}

// TextContent sets an element's text directly instead of through a text
// child node.
type TextContent string

func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
	}
	applyArgs(node, args)
	return node
}

// applyArgs folds element or component arguments into node.
func applyArgs(node *VNode, args []any) {
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			setAttr(node, v)

		case []Attr:
			for _, a := range v {
				setAttr(node, a)
			}

		case Props:
			for k, val := range v {
				setAttr(node, Attr{Key: k, Value: val})
			}

		case EventHandler:
			node.Props[v.Event] = v.Handler

		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case string:
			// Shorthand for text node
			node.Children = append(node.Children, Text(v))

		case TextContent:
			node.Text = string(v)
		}
	}
}

func setAttr(node *VNode, a Attr) {
	switch a.Key {
	case "":
		return
	case "key":
		node.Key = a.Value
	default:
		node.Props[a.Key] = a.Value
	}
}

// Sectioning and text elements

func Main(args ...any) *VNode    { return createElement("main", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func Div(args ...any) *VNode     { return createElement("div", args) }
func P(args ...any) *VNode       { return createElement("p", args) }
func Span(args ...any) *VNode    { return createElement("span", args) }
func Strong(args ...any) *VNode  { return createElement("strong", args) }
func Em(args ...any) *VNode      { return createElement("em", args) }
func Hr(args ...any) *VNode      { return createElement("hr", args) }

// Lists

func Ul(args ...any) *VNode { return createElement("ul", args) }
func Li(args ...any) *VNode { return createElement("li", args) }

// Forms

func Button(args ...any) *VNode { return createElement("button", args) }
func Input(args ...any) *VNode  { return createElement("input", args) }
func Label(args ...any) *VNode  { return createElement("label", args) }
