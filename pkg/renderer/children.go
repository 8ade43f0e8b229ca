package renderer

import (
	verrors "github.com/vango-dev/vcore/internal/errors"
	"github.com/vango-dev/vcore/pkg/host"
	"github.com/vango-dev/vcore/pkg/vdom"
)

func (r *Renderer) mountChildren(children []*vdom.VNode, container, anchor host.Node, parent *Instance) {
	for i := range children {
		child := prepare(children[i])
		children[i] = child
		r.patch(nil, child, container, anchor, parent)
	}
}

// patchChildren reconciles the content of n1 into n2. An element holds
// either a child list or text content; switching between the two clears
// the old form first.
func (r *Renderer) patchChildren(n1, n2 *vdom.VNode, container, anchor host.Node, parent *Instance) {
	c1, c2 := n1.Children, n2.Children

	if n2.HasTextContent() {
		if len(c1) > 0 {
			r.unmountChildren(c1, parent, false)
		}
		if len(c1) > 0 || n1.Text != n2.Text {
			r.host.SetElementText(container, n2.Text)
		}
		return
	}
	if n1.HasTextContent() {
		r.host.SetElementText(container, "")
	}

	switch {
	case len(c2) == 0:
		if len(c1) > 0 {
			r.unmountChildren(c1, parent, true)
		}
	case len(c1) == 0:
		r.mountChildren(c2, container, anchor, parent)
	case hasKeys(c1) || hasKeys(c2):
		r.patchKeyedChildren(c1, c2, container, anchor, parent)
	default:
		r.patchUnkeyedChildren(c1, c2, container, anchor, parent)
	}
}

func hasKeys(children []*vdom.VNode) bool {
	for _, c := range children {
		if c.HasKey() {
			return true
		}
	}
	return false
}

// patchUnkeyedChildren matches children by position.
func (r *Renderer) patchUnkeyedChildren(c1, c2 []*vdom.VNode, container, anchor host.Node, parent *Instance) {
	common := min(len(c1), len(c2))
	for i := 0; i < common; i++ {
		c2[i] = prepare(c2[i])
		r.patch(c1[i], c2[i], container, nil, parent)
	}
	if len(c1) > len(c2) {
		r.unmountChildren(c1[common:], parent, true)
	} else {
		r.mountChildren(c2[common:], container, anchor, parent)
	}
}

func prepareAt(list []*vdom.VNode, i int) *vdom.VNode {
	list[i] = prepare(list[i])
	return list[i]
}

// patchKeyedChildren reconciles two child lists, matching by key.
//
// Common prefixes and suffixes are patched in place first. What remains is
// either a pure insertion, a pure removal, or an unknown middle section,
// where nodes are matched through a key map and only the nodes outside the
// longest increasing run of old positions are moved.
func (r *Renderer) patchKeyedChildren(c1, c2 []*vdom.VNode, container, parentAnchor host.Node, parent *Instance) {
	i := 0
	l2 := len(c2)
	e1, e2 := len(c1)-1, l2-1

	// 1. head
	for i <= e1 && i <= e2 {
		n1, n2 := c1[i], prepareAt(c2, i)
		if !vdom.IsSameType(n1, n2) {
			break
		}
		r.patch(n1, n2, container, nil, parent)
		i++
	}

	// 2. tail
	for i <= e1 && i <= e2 {
		n1, n2 := c1[e1], prepareAt(c2, e2)
		if !vdom.IsSameType(n1, n2) {
			break
		}
		r.patch(n1, n2, container, nil, parent)
		e1--
		e2--
	}

	// 3. old list consumed: mount the rest
	if i > e1 {
		if i <= e2 {
			anchor := parentAnchor
			if e2+1 < l2 {
				anchor = r.firstHost(c2[e2+1])
			}
			for ; i <= e2; i++ {
				r.patch(nil, prepareAt(c2, i), container, anchor, parent)
			}
		}
		return
	}

	// 4. new list consumed: unmount the rest
	if i > e2 {
		for ; i <= e1; i++ {
			r.unmount(c1[i], parent, true)
		}
		return
	}

	// 5. unknown middle section
	s1, s2 := i, i

	// 5a. key -> new index
	keyToNewIndex := make(map[any]int, e2-s2+1)
	for i = s2; i <= e2; i++ {
		n := prepareAt(c2, i)
		if !n.HasKey() {
			continue
		}
		if _, dup := keyToNewIndex[n.Key]; dup {
			err := verrors.New("C001").WithDetailf("key %v", n.Key)
			r.logger.Warn(err.Message, err.Attrs()...)
		}
		keyToNewIndex[n.Key] = i
	}

	// 5b. patch matched old nodes, unmount the rest. newIndexToOldIndex
	// holds old index + 1 per new position; 0 means no old counterpart.
	toBePatched := e2 - s2 + 1
	newIndexToOldIndex := make([]int, toBePatched)
	patched := 0
	moved := false
	maxNewIndexSoFar := 0

	for i = s1; i <= e1; i++ {
		prev := c1[i]
		if patched >= toBePatched {
			r.unmount(prev, parent, true)
			continue
		}

		newIndex := -1
		if prev.HasKey() {
			if j, ok := keyToNewIndex[prev.Key]; ok {
				newIndex = j
			}
		} else {
			for j := s2; j <= e2; j++ {
				if newIndexToOldIndex[j-s2] == 0 && vdom.IsSameType(prev, c2[j]) {
					newIndex = j
					break
				}
			}
		}
		// A second old node claiming the same slot (duplicate old keys)
		// is treated as unmatched.
		if newIndex < 0 || newIndexToOldIndex[newIndex-s2] != 0 {
			r.unmount(prev, parent, true)
			continue
		}

		newIndexToOldIndex[newIndex-s2] = i + 1
		if newIndex >= maxNewIndexSoFar {
			maxNewIndexSoFar = newIndex
		} else {
			moved = true
		}
		r.patch(prev, c2[newIndex], container, nil, parent)
		patched++
	}

	// 5c. nodes on the longest increasing run stay put
	var stable []int
	if moved {
		stable = LongestIncreasingSubsequence(newIndexToOldIndex)
	}

	// 5d. walk backwards so every anchor is already in place
	j := len(stable) - 1
	for k := toBePatched - 1; k >= 0; k-- {
		idx := s2 + k
		next := c2[idx]
		anchor := parentAnchor
		if idx+1 < l2 {
			anchor = r.firstHost(c2[idx+1])
		}

		switch {
		case newIndexToOldIndex[k] == 0:
			r.patch(nil, next, container, anchor, parent)
		case moved:
			if j < 0 || k != stable[j] {
				r.move(next, container, anchor)
			} else {
				j--
			}
		}
	}
}
