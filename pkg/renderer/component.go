package renderer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	verrors "github.com/vango-dev/vcore/internal/errors"
	"github.com/vango-dev/vcore/pkg/host"
	"github.com/vango-dev/vcore/pkg/reactive"
	"github.com/vango-dev/vcore/pkg/scheduler"
	"github.com/vango-dev/vcore/pkg/vdom"
)

// Component defines a reusable piece of UI.
//
// Setup runs once per instance, untracked, before the first render; its
// return value is available as Instance.State. Render runs inside the
// instance's render effect, so every reactive read it makes is tracked.
type Component struct {
	Name string

	// Props lists declared prop names. Everything else passed to the
	// component is a fallthrough attribute, merged onto an element root.
	Props []string

	// Emits lists events raised with Instance.Emit. Their "on<event>"
	// handlers are neither props nor fallthrough attributes.
	Emits []string

	// NoInheritAttrs disables merging fallthrough attributes onto the root.
	NoInheritAttrs bool

	Setup  func(ctx *Instance) any
	Render func(ctx *Instance) *vdom.VNode
}

// ComponentName implements vdom.Component.
func (c *Component) ComponentName() string {
	return c.Name
}

func (c *Component) declaresProp(key string) bool {
	for _, p := range c.Props {
		if p == key {
			return true
		}
	}
	return false
}

func (c *Component) declaresEmit(key string) bool {
	for _, e := range c.Emits {
		if vdom.EventProp(e) == key {
			return true
		}
	}
	return false
}

// asComponent returns the renderer's definition for a component node.
// Foreign vdom.Component implementations render as a placeholder comment.
func (r *Renderer) asComponent(c vdom.Component) *Component {
	if comp, ok := c.(*Component); ok {
		return comp
	}
	name := "<nil>"
	if c != nil {
		name = c.ComponentName()
	}
	r.logger.Warn("unsupported component definition", "component", name)
	return &Component{
		Name:   name,
		Render: func(*Instance) *vdom.VNode { return vdom.Comment(name) },
	}
}

// Instance is a mounted component.
type Instance struct {
	uid    uint64
	r      *Renderer
	comp   *Component
	parent *Instance

	vnode   *vdom.VNode // The component node this instance renders for
	next    *vdom.VNode // Set by a parent update until the re-render picks it up
	subTree *vdom.VNode

	rawProps map[string]any
	attrs    vdom.Props
	state    any

	effect *reactive.Effect
	job    *scheduler.Job

	hooks [hookCount][]func()
	scope []StopFunc

	keepAlive *keepAliveState

	mounted   bool
	unmounted bool
}

// UID returns the instance id. Parents always have lower ids than their
// children.
func (i *Instance) UID() uint64 { return i.uid }

// Name returns the component name.
func (i *Instance) Name() string { return i.comp.Name }

// Parent returns the parent instance, or nil for a root.
func (i *Instance) Parent() *Instance { return i.parent }

// Renderer returns the renderer that mounted the instance.
func (i *Instance) Renderer() *Renderer { return i.r }

// Runtime returns the reactive runtime.
func (i *Instance) Runtime() *reactive.Runtime { return i.r.rt }

// State returns what Setup returned.
func (i *Instance) State() any { return i.state }

// SubTree returns the tree of the last render.
func (i *Instance) SubTree() *vdom.VNode { return i.subTree }

// IsMounted reports whether the first render has been patched in.
func (i *Instance) IsMounted() bool { return i.mounted && !i.unmounted }

// Props returns the declared props as a shallow readonly handle. Reads
// through it are tracked.
func (i *Instance) Props() *reactive.Object {
	return i.r.rt.ShallowReadonly(i.rawProps).(*reactive.Object)
}

// Attrs returns the fallthrough attributes of the last update.
func (i *Instance) Attrs() vdom.Props {
	return i.attrs
}

// Emit calls the handler the parent bound for event ("on<event>" prop).
// Emitting an event nobody listens to is not an error.
func (i *Instance) Emit(event string, args ...any) error {
	handler := i.vnode.Props[vdom.EventProp(event)]
	if handler == nil {
		return nil
	}
	var payload any
	switch len(args) {
	case 0:
	case 1:
		payload = args[0]
	default:
		payload = args
	}
	return host.Invoke(handler, host.Event{Type: event, Target: i, Payload: payload})
}

// Update schedules a re-render.
func (i *Instance) Update() {
	if i.job != nil && !i.unmounted {
		i.r.queue.Enqueue(i.job)
	}
}

// NextTick runs fn after the next flush.
func (i *Instance) NextTick(fn func()) {
	i.r.queue.NextTick(fn)
}

func (i *Instance) keepAliveState() *keepAliveState {
	if i == nil {
		return nil
	}
	return i.keepAlive
}

// splitProps sorts raw vnode props into declared props and fallthrough
// attributes. Declared emit handlers belong to neither.
func (i *Instance) splitProps(raw vdom.Props) (props map[string]any, attrs vdom.Props) {
	props = make(map[string]any)
	for k, v := range raw {
		switch {
		case i.comp.declaresProp(k):
			props[k] = v
		case i.comp.declaresEmit(k):
		default:
			if attrs == nil {
				attrs = make(vdom.Props)
			}
			attrs[k] = v
		}
	}
	return props, attrs
}

// updateProps merges next into the reactive props store. Only changed
// values trigger.
func (i *Instance) updateProps(next vdom.Props) {
	props, attrs := i.splitProps(next)
	store := i.r.rt.ShallowReactive(i.rawProps).(*reactive.Object)
	for _, name := range i.comp.Props {
		if v, ok := props[name]; ok {
			_ = store.Set(name, v)
		} else if _, had := i.rawProps[name]; had {
			_ = store.Delete(name)
		}
	}
	i.attrs = attrs
}

// propsChanged reports whether a parent update must re-render the child.
func (c *Component) propsChanged(prev, next vdom.Props) bool {
	if len(prev) != len(next) {
		return true
	}
	for k, nv := range next {
		pv, ok := prev[k]
		if !ok {
			return true
		}
		if vdom.IsEvent(k) {
			// Emit reads the handler from the latest node, so a declared
			// emit never forces a render. Other handlers fall through to
			// the root element and must be re-applied.
			if c.declaresEmit(k) {
				continue
			}
			return true
		}
		if reactive.HasChanged(nv, pv) {
			return true
		}
	}
	return false
}

func (r *Renderer) processComponent(n1, n2 *vdom.VNode, container, anchor host.Node, parent *Instance) {
	if n1 == nil {
		if n2.Flags&vdom.FlagKeptAlive != 0 {
			if ka := parent.keepAliveState(); ka != nil {
				ka.activate(n2, container, anchor)
				return
			}
		}
		r.mountComponent(n2, container, anchor, parent)
		return
	}
	r.updateComponent(n1, n2)
}

func (r *Renderer) mountComponent(v *vdom.VNode, container, anchor host.Node, parent *Instance) {
	r.uid++
	inst := &Instance{
		uid:    r.uid,
		r:      r,
		comp:   r.asComponent(v.Comp),
		parent: parent,
		vnode:  v,
	}
	v.Instance = inst
	inst.rawProps, inst.attrs = inst.splitProps(v.Props)

	if inst.comp.Setup != nil {
		r.rt.Untracked(func() {
			inst.state = inst.comp.Setup(inst)
		})
	}
	r.stats.Mounts++
	r.setupRenderEffect(inst, container, anchor)
}

// setupRenderEffect creates the instance's render effect. Its triggers
// enqueue the instance job instead of re-rendering synchronously; the job
// rank is the uid so parents re-render before their children.
func (r *Renderer) setupRenderEffect(inst *Instance, container, anchor host.Node) {
	inst.job = &scheduler.Job{Name: "render:" + inst.Name(), Rank: inst.uid}
	inst.effect = r.rt.NewEffect(
		func() { r.componentEffect(inst, container, anchor) },
		reactive.Lazy(),
		reactive.WithScheduler(func() { r.queue.Enqueue(inst.job) }),
	)
	inst.job.Run = func() {
		if inst.effect.Active() {
			inst.effect.Run()
		}
	}
	inst.effect.Run()
}

func (r *Renderer) componentEffect(inst *Instance, container, anchor host.Node) {
	if inst.mounted {
		r.updateInstance(inst)
		return
	}

	r.callHooks(inst, HookBeforeMount)
	tree := r.renderRoot(inst)
	inst.subTree = tree
	r.patch(nil, tree, container, anchor, inst)
	inst.vnode.El = tree.El
	inst.mounted = true
	r.queueHooks(inst, HookMounted)
	if inst.vnode.Flags&vdom.FlagShouldKeepAlive != 0 {
		r.queueHooks(inst, HookActivated)
	}
}

func (r *Renderer) updateInstance(inst *Instance) {
	_, span := r.tracer.Start(context.Background(), "vcore.component.update",
		trace.WithAttributes(
			attribute.String("vcore.component", inst.Name()),
			attribute.Int64("vcore.uid", int64(inst.uid)),
		))
	defer span.End()

	next := inst.next
	if next != nil {
		next.El = inst.vnode.El
		next.Instance = inst
		inst.vnode = next
		inst.next = nil
		inst.updateProps(next.Props)
	} else {
		next = inst.vnode
	}

	r.callHooks(inst, HookBeforeUpdate)
	tree := r.renderRoot(inst)
	prev := inst.subTree
	inst.subTree = tree
	r.patch(prev, tree, r.host.ParentOf(r.firstHost(prev)), r.nextHost(prev), inst)
	next.El = tree.El
	r.updateHostEl(inst, tree.El)
	r.stats.Updates++
	r.queueHooks(inst, HookUpdated)
}

// updateHostEl propagates a changed root host node to ancestors whose
// own root is this instance.
func (r *Renderer) updateHostEl(inst *Instance, el host.Node) {
	for p := inst.parent; p != nil && p.subTree == inst.vnode; p = p.parent {
		p.vnode.El = el
		p.subTree.El = el
		inst = p
	}
}

// updateComponent applies a parent-driven update. The child's pending job
// is dropped and its effect runs once with the merged props.
func (r *Renderer) updateComponent(n1, n2 *vdom.VNode) {
	inst, ok := n1.Instance.(*Instance)
	if !ok {
		return
	}
	n2.Instance = inst
	if !inst.comp.propsChanged(n1.Props, n2.Props) {
		n2.El = n1.El
		inst.vnode = n2
		return
	}
	inst.next = n2
	r.queue.Remove(inst.job)
	inst.effect.Run()
}

// renderRoot runs the component's render and normalizes the result.
func (r *Renderer) renderRoot(inst *Instance) *vdom.VNode {
	var tree *vdom.VNode
	if inst.comp.Render != nil {
		tree = inst.comp.Render(inst)
	}
	if tree == nil {
		err := verrors.New("C002").WithDetailf("component %s", inst.Name())
		r.logger.Warn(err.Message, err.Attrs()...)
		return vdom.Comment("")
	}
	if tree.Flags&vdom.FlagKeptAlive == 0 {
		tree = prepare(tree)
	}
	if len(inst.attrs) > 0 && !inst.comp.NoInheritAttrs && tree.Kind == vdom.KindElement {
		tree.Props = mergeAttrs(tree.Props, inst.attrs)
	}
	return tree
}

// mergeAttrs returns props with attrs applied on top. Classes are joined.
func mergeAttrs(props, attrs vdom.Props) vdom.Props {
	out := props.Clone()
	if out == nil {
		out = make(vdom.Props, len(attrs))
	}
	for k, v := range attrs {
		if k == "class" {
			if own, ok := out[k].(string); ok && own != "" {
				if extra, ok := v.(string); ok && extra != "" {
					out[k] = own + " " + extra
					continue
				}
			}
		}
		out[k] = v
	}
	return out
}

func (r *Renderer) unmountComponent(inst *Instance, doRemove bool) {
	r.callHooks(inst, HookBeforeUnmount)
	for _, stop := range inst.scope {
		stop()
	}
	inst.scope = nil
	if inst.effect != nil {
		inst.effect.Stop()
		r.queue.Remove(inst.job)
	}
	if inst.subTree != nil {
		r.unmount(inst.subTree, inst, doRemove)
	}
	inst.unmounted = true
	r.stats.Unmounts++
	r.queueHooks(inst, HookUnmounted)
}
