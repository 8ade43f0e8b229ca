package memory

import "strings"

// selector is a compound simple selector: tag, #id and .class parts.
type selector struct {
	tag     string
	id      string
	classes []string
}

func parseSelector(s string) (selector, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " >+~[:,") {
		return selector{}, false
	}
	var sel selector
	i := strings.IndexAny(s, "#.")
	if i < 0 {
		sel.tag = s
		return sel, true
	}
	sel.tag = s[:i]
	for rest := s[i:]; rest != ""; {
		marker := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, "#.")
		if end < 0 {
			end = len(rest)
		}
		part := rest[:end]
		rest = rest[end:]
		if part == "" {
			return selector{}, false
		}
		if marker == '#' {
			sel.id = part
		} else {
			sel.classes = append(sel.classes, part)
		}
	}
	return sel, true
}

func (s selector) matches(n *Node) bool {
	if n.Type != ElementNode {
		return false
	}
	if s.tag != "" && !strings.EqualFold(s.tag, n.Tag) {
		return false
	}
	if s.id != "" {
		if id, _ := n.Attrs["id"].(string); id != s.id {
			return false
		}
	}
	if len(s.classes) > 0 {
		have := n.classes()
		for _, want := range s.classes {
			found := false
			for _, c := range have {
				if c == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}
