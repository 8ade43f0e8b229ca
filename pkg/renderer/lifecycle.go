package renderer

import "github.com/vango-dev/vcore/pkg/scheduler"

// Hook identifies a lifecycle point.
type Hook uint8

const (
	HookBeforeMount Hook = iota
	HookMounted
	HookBeforeUpdate
	HookUpdated
	HookBeforeUnmount
	HookUnmounted
	HookActivated
	HookDeactivated
	hookCount
)

// String returns the hook name.
func (h Hook) String() string {
	switch h {
	case HookBeforeMount:
		return "beforeMount"
	case HookMounted:
		return "mounted"
	case HookBeforeUpdate:
		return "beforeUpdate"
	case HookUpdated:
		return "updated"
	case HookBeforeUnmount:
		return "beforeUnmount"
	case HookUnmounted:
		return "unmounted"
	case HookActivated:
		return "activated"
	case HookDeactivated:
		return "deactivated"
	default:
		return "unknown"
	}
}

// OnBeforeMount registers fn to run right before the first render.
func (i *Instance) OnBeforeMount(fn func()) { i.addHook(HookBeforeMount, fn) }

// OnMounted registers fn to run after the first render is in the host.
func (i *Instance) OnMounted(fn func()) { i.addHook(HookMounted, fn) }

// OnBeforeUpdate registers fn to run before each re-render.
func (i *Instance) OnBeforeUpdate(fn func()) { i.addHook(HookBeforeUpdate, fn) }

// OnUpdated registers fn to run after each re-render is in the host.
func (i *Instance) OnUpdated(fn func()) { i.addHook(HookUpdated, fn) }

// OnBeforeUnmount registers fn to run before teardown starts.
func (i *Instance) OnBeforeUnmount(fn func()) { i.addHook(HookBeforeUnmount, fn) }

// OnUnmounted registers fn to run after the instance is gone.
func (i *Instance) OnUnmounted(fn func()) { i.addHook(HookUnmounted, fn) }

// OnActivated registers fn to run when a kept-alive instance is inserted.
func (i *Instance) OnActivated(fn func()) { i.addHook(HookActivated, fn) }

// OnDeactivated registers fn to run when a kept-alive instance is parked.
func (i *Instance) OnDeactivated(fn func()) { i.addHook(HookDeactivated, fn) }

func (i *Instance) addHook(h Hook, fn func()) {
	if fn != nil {
		i.hooks[h] = append(i.hooks[h], fn)
	}
}

// callHooks runs hooks synchronously. Hooks never subscribe the render
// effect that calls them.
func (r *Renderer) callHooks(inst *Instance, h Hook) {
	for _, fn := range inst.hooks[h] {
		r.rt.Untracked(fn)
	}
}

// queueHooks runs hooks in the post stage of the current flush, after the
// host reflects the render that caused them.
func (r *Renderer) queueHooks(inst *Instance, h Hook) {
	hooks := inst.hooks[h]
	if len(hooks) == 0 {
		return
	}
	r.queue.EnqueuePost(scheduler.NewJob(inst.Name()+":"+h.String(), func() {
		if inst.unmounted && (h == HookMounted || h == HookUpdated || h == HookActivated) {
			return
		}
		for _, fn := range hooks {
			r.rt.Untracked(fn)
		}
	}))
}
