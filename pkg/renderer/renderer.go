package renderer

import (
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vcore/pkg/host"
	"github.com/vango-dev/vcore/pkg/reactive"
	"github.com/vango-dev/vcore/pkg/scheduler"
	"github.com/vango-dev/vcore/pkg/vdom"
)

// Stats counts renderer work since creation.
type Stats struct {
	Mounts   int // Component instances mounted
	Updates  int // Component re-renders patched against their previous tree
	Unmounts int // Component instances unmounted
}

// Renderer reconciles snapshot trees into a host. It drives one host
// adapter and belongs to the goroutine that owns its runtime and queue.
type Renderer struct {
	host   host.Adapter
	rt     *reactive.Runtime
	queue  *scheduler.Queue
	logger *slog.Logger
	tracer trace.Tracer

	// roots maps each container passed to Render to its current tree.
	roots map[host.Node]*vdom.VNode

	uid   uint64
	stats Stats
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets the tracer used for component update spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Renderer) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// New creates a renderer over h. Component render effects are scheduled
// on q.
func New(h host.Adapter, rt *reactive.Runtime, q *scheduler.Queue, opts ...Option) *Renderer {
	r := &Renderer{
		host:   h,
		rt:     rt,
		queue:  q,
		logger: slog.Default().With("component", "renderer"),
		tracer: otel.Tracer("github.com/vango-dev/vcore/pkg/renderer"),
		roots:  make(map[host.Node]*vdom.VNode),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Host returns the host adapter.
func (r *Renderer) Host() host.Adapter {
	return r.host
}

// Runtime returns the reactive runtime.
func (r *Renderer) Runtime() *reactive.Runtime {
	return r.rt
}

// Queue returns the job queue.
func (r *Renderer) Queue() *scheduler.Queue {
	return r.queue
}

// Stats returns the work counters.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// NextTick runs fn after the next flush.
func (r *Renderer) NextTick(fn func()) {
	r.queue.NextTick(fn)
}

// Render makes container hold vnode, patching against whatever the
// previous Render left there. A nil vnode unmounts the container's tree.
// Pending jobs and post-flush hooks run before Render returns.
func (r *Renderer) Render(vnode *vdom.VNode, container host.Node) {
	prev := r.roots[container]
	if vnode == nil {
		if prev != nil {
			r.unmount(prev, nil, true)
			delete(r.roots, container)
		}
	} else {
		r.patch(prev, vnode, container, nil, nil)
		r.roots[container] = vnode
	}
	r.queue.Flush()
}

// patch brings n1 (nil on mount) to n2 under container. New host nodes are
// inserted before anchor, or appended when anchor is nil.
func (r *Renderer) patch(n1, n2 *vdom.VNode, container, anchor host.Node, parent *Instance) {
	if n1 == n2 {
		return
	}
	if n1 != nil && !vdom.IsSameType(n1, n2) {
		anchor = r.nextHost(n1)
		r.unmount(n1, parent, true)
		n1 = nil
	}

	switch n2.Kind {
	case vdom.KindText:
		r.processText(n1, n2, container, anchor)
	case vdom.KindComment:
		r.processComment(n1, n2, container, anchor)
	case vdom.KindFragment:
		r.processFragment(n1, n2, container, anchor, parent)
	case vdom.KindComponent:
		r.processComponent(n1, n2, container, anchor, parent)
	default:
		r.processElement(n1, n2, container, anchor, parent)
	}
}

func (r *Renderer) processText(n1, n2 *vdom.VNode, container, anchor host.Node) {
	if n1 == nil {
		n2.El = r.host.CreateText(n2.Text)
		r.host.Insert(n2.El, container, anchor)
		return
	}
	n2.El = n1.El
	if n2.Text != n1.Text {
		r.host.SetText(n2.El, n2.Text)
	}
}

func (r *Renderer) processComment(n1, n2 *vdom.VNode, container, anchor host.Node) {
	if n1 == nil {
		n2.El = r.host.CreateComment(n2.Text)
		r.host.Insert(n2.El, container, anchor)
		return
	}
	// Comments are placeholders; their data is never patched.
	n2.El = n1.El
}

// processFragment bounds the children with two empty text anchors so the
// group can be moved and removed as a unit.
func (r *Renderer) processFragment(n1, n2 *vdom.VNode, container, anchor host.Node, parent *Instance) {
	if n1 == nil {
		n2.El = r.host.CreateText("")
		n2.Anchor = r.host.CreateText("")
		r.host.Insert(n2.El, container, anchor)
		r.host.Insert(n2.Anchor, container, anchor)
		r.mountChildren(n2.Children, container, n2.Anchor, parent)
		return
	}
	n2.El, n2.Anchor = n1.El, n1.Anchor
	r.patchChildren(n1, n2, container, n2.Anchor, parent)
}

func (r *Renderer) processElement(n1, n2 *vdom.VNode, container, anchor host.Node, parent *Instance) {
	if n1 == nil {
		r.mountElement(n2, container, anchor, parent)
		return
	}
	el := n1.El
	n2.El = el
	r.patchChildren(n1, n2, el, nil, parent)
	r.patchProps(el, n1.Props, n2.Props)
}

func (r *Renderer) mountElement(v *vdom.VNode, container, anchor host.Node, parent *Instance) {
	el := r.host.CreateElement(v.Tag)
	v.El = el
	if v.HasTextContent() {
		r.host.SetElementText(el, v.Text)
	} else if len(v.Children) > 0 {
		r.mountChildren(v.Children, el, nil, parent)
	}
	r.patchProps(el, nil, v.Props)
	r.host.Insert(el, container, anchor)
}

// patchProps applies the symmetric difference of prev and next. Event
// handlers are always re-applied since funcs have no usable identity.
func (r *Renderer) patchProps(el host.Node, prev, next vdom.Props) {
	for _, key := range sortedKeys(next) {
		nv := next[key]
		if nv == nil {
			continue
		}
		pv, had := prev[key]
		if had && !vdom.IsEvent(key) && reactive.SameValue(pv, nv) {
			continue
		}
		r.host.PatchAttribute(el, key, pv, nv)
	}
	for _, key := range sortedKeys(prev) {
		if pv := prev[key]; pv != nil && next[key] == nil {
			r.host.PatchAttribute(el, key, pv, nil)
		}
	}
}

func sortedKeys(p vdom.Props) []string {
	if len(p) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// prepare returns v, or a fresh copy when v is already mounted somewhere.
func prepare(v *vdom.VNode) *vdom.VNode {
	if v.El != nil || v.Instance != nil {
		return v.Clone()
	}
	return v
}

// firstHost returns the first host node of v.
func (r *Renderer) firstHost(v *vdom.VNode) host.Node {
	if v.Kind == vdom.KindComponent {
		if inst, ok := v.Instance.(*Instance); ok && inst.subTree != nil {
			return r.firstHost(inst.subTree)
		}
	}
	return v.El
}

// nextHost returns the host node following everything v occupies.
func (r *Renderer) nextHost(v *vdom.VNode) host.Node {
	switch v.Kind {
	case vdom.KindComponent:
		if inst, ok := v.Instance.(*Instance); ok && inst.subTree != nil {
			return r.nextHost(inst.subTree)
		}
		return nil
	case vdom.KindFragment:
		return r.host.NextSiblingOf(v.Anchor)
	}
	return r.host.NextSiblingOf(v.El)
}

// move relocates the host nodes of an already mounted v before anchor.
func (r *Renderer) move(v *vdom.VNode, container, anchor host.Node) {
	switch v.Kind {
	case vdom.KindComponent:
		if inst, ok := v.Instance.(*Instance); ok && inst.subTree != nil {
			r.move(inst.subTree, container, anchor)
		}
	case vdom.KindFragment:
		r.host.Insert(v.El, container, anchor)
		for _, child := range v.Children {
			r.move(child, container, anchor)
		}
		r.host.Insert(v.Anchor, container, anchor)
	default:
		r.host.Insert(v.El, container, anchor)
	}
}

// unmount tears v down. Only the outermost host node of a removed subtree
// is removed from the host; descendants go with it.
func (r *Renderer) unmount(v *vdom.VNode, parent *Instance, doRemove bool) {
	if v.Flags&vdom.FlagShouldKeepAlive != 0 {
		if ka := parent.keepAliveState(); ka != nil {
			ka.deactivate(v)
			return
		}
	}

	switch v.Kind {
	case vdom.KindComponent:
		if inst, ok := v.Instance.(*Instance); ok {
			r.unmountComponent(inst, doRemove)
		}
		return
	case vdom.KindFragment:
		r.unmountChildren(v.Children, parent, false)
		if doRemove {
			r.removeRange(v.El, v.Anchor)
		}
		return
	case vdom.KindElement:
		r.unmountChildren(v.Children, parent, false)
	}
	if doRemove && v.El != nil {
		r.host.Remove(v.El)
	}
}

func (r *Renderer) unmountChildren(children []*vdom.VNode, parent *Instance, doRemove bool) {
	for _, child := range children {
		r.unmount(child, parent, doRemove)
	}
}

// removeRange removes every host node from start through end.
func (r *Renderer) removeRange(start, end host.Node) {
	for n := start; n != nil; {
		next := r.host.NextSiblingOf(n)
		r.host.Remove(n)
		if n == end {
			return
		}
		n = next
	}
}
