package memory

import (
	"fmt"
	"strings"

	"github.com/vango-dev/vcore/pkg/vdom"
)

// HTML serializes the children of n. Event handlers and nil or false
// attributes are omitted; true attributes render as bare names.
func HTML(n *Node) string {
	var b strings.Builder
	for _, c := range n.Children {
		writeNode(&b, c)
	}
	return b.String()
}

// OuterHTML serializes n itself.
func OuterHTML(n *Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		b.WriteString(escapeHTML(n.Text))
	case CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.Text)
		b.WriteString("-->")
	case DocumentNode:
		for _, c := range n.Children {
			writeNode(b, c)
		}
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		for _, k := range n.sortedAttrKeys() {
			if vdom.IsEvent(k) {
				continue
			}
			switch v := n.Attrs[k].(type) {
			case nil:
			case bool:
				if v {
					b.WriteByte(' ')
					b.WriteString(k)
				}
			default:
				fmt.Fprintf(b, ` %s="%s"`, k, escapeAttr(fmt.Sprint(v)))
			}
		}
		b.WriteByte('>')
		if vdom.IsVoidElement(n.Tag) {
			return
		}
		for _, c := range n.Children {
			writeNode(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}

func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
