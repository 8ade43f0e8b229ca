package renderer

import (
	"path"

	"github.com/golang/groupcache/lru"

	"github.com/vango-dev/vcore/pkg/host"
	"github.com/vango-dev/vcore/pkg/vdom"
)

// KeepAliveOptions configures KeepAlive.
type KeepAliveOptions struct {
	// Include lists component name patterns (path.Match syntax) to cache.
	// Empty caches every component.
	Include []string

	// Exclude lists component name patterns never cached.
	Exclude []string

	// Max bounds the number of cached instances; the least recently used
	// one is unmounted when it is exceeded. Zero means no bound.
	Max int
}

var keepAliveComponent = &Component{
	Name:   "KeepAlive",
	Props:  []string{"child", "include", "exclude", "max"},
	Setup:  setupKeepAlive,
	Render: renderKeepAlive,
}

// KeepAlive wraps a component node so that switching it out parks its
// instance in an off-tree container instead of unmounting it. Rendering
// the same component again reinserts the parked instance.
func KeepAlive(child *vdom.VNode, opts KeepAliveOptions) *vdom.VNode {
	return vdom.Comp(keepAliveComponent, vdom.Props{
		"child":   child,
		"include": opts.Include,
		"exclude": opts.Exclude,
		"max":     opts.Max,
	})
}

// keepAliveState is the cache behind one KeepAlive instance.
type keepAliveState struct {
	inst    *Instance
	cache   *lru.Cache
	names   map[lru.Key]string
	storage host.Node
}

func setupKeepAlive(ctx *Instance) any {
	props := ctx.Props()
	limit, _ := props.Get("max").(int)

	ka := &keepAliveState{
		inst:    ctx,
		cache:   lru.New(limit),
		names:   make(map[lru.Key]string),
		storage: ctx.r.host.CreateElement("div"),
	}
	ka.cache.OnEvicted = ka.evicted
	ctx.keepAlive = ka

	ctx.Watch([]any{
		func() any { return props.Get("include") },
		func() any { return props.Get("exclude") },
	}, func(any, any, func(func())) {
		ka.prune()
	}, Flush(FlushPost))
	ctx.OnBeforeUnmount(func() {
		ka.cache.Clear()
	})
	return ka
}

func renderKeepAlive(ctx *Instance) *vdom.VNode {
	ka := ctx.keepAlive
	child, _ := ctx.Props().Get("child").(*vdom.VNode)
	if child == nil {
		return vdom.Comment("keep-alive")
	}
	if child.Kind != vdom.KindComponent || child.Comp == nil {
		return child
	}
	name := child.Comp.ComponentName()
	if !ka.matches(name) {
		return child
	}

	key := cacheKey(child)
	if cached, ok := ka.cache.Get(key); ok {
		if c := cached.(*vdom.VNode); c != child {
			child.El = c.El
			child.Instance = c.Instance
		}
		child.Flags |= vdom.FlagKeptAlive
	}
	child.Flags |= vdom.FlagShouldKeepAlive
	ka.names[key] = name
	ka.cache.Add(key, child)
	return child
}

func cacheKey(v *vdom.VNode) lru.Key {
	if v.HasKey() {
		return v.Key
	}
	return v.Comp
}

func (ka *keepAliveState) matches(name string) bool {
	include, _ := ka.inst.rawProps["include"].([]string)
	exclude, _ := ka.inst.rawProps["exclude"].([]string)
	if len(include) > 0 && !matchAny(include, name) {
		return false
	}
	return !matchAny(exclude, name)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// evicted runs for every entry leaving the cache. The entry currently on
// screen only loses its keep-alive flags, so its own unmount is real;
// parked entries are unmounted from the storage container.
func (ka *keepAliveState) evicted(key lru.Key, value any) {
	delete(ka.names, key)
	v := value.(*vdom.VNode)
	v.Flags &^= vdom.FlagShouldKeepAlive | vdom.FlagKeptAlive

	if current := ka.inst.subTree; current != nil && vdom.IsSameType(v, current) {
		current.Flags &^= vdom.FlagShouldKeepAlive | vdom.FlagKeptAlive
		return
	}
	ka.inst.r.unmount(v, ka.inst, true)
}

// prune drops cached entries whose names no longer match.
func (ka *keepAliveState) prune() {
	for key, name := range ka.names {
		if !ka.matches(name) {
			ka.cache.Remove(key)
		}
	}
}

func (ka *keepAliveState) deactivate(v *vdom.VNode) {
	inst, ok := v.Instance.(*Instance)
	if !ok {
		return
	}
	r := ka.inst.r
	r.move(v, ka.storage, nil)
	r.queueHooks(inst, HookDeactivated)
}

func (ka *keepAliveState) activate(v *vdom.VNode, container, anchor host.Node) {
	inst, ok := v.Instance.(*Instance)
	if !ok {
		return
	}
	r := ka.inst.r
	r.move(v, container, anchor)
	// Props may have changed while the instance was parked.
	r.patch(inst.vnode, v, container, anchor, ka.inst)
	r.queueHooks(inst, HookActivated)
}
