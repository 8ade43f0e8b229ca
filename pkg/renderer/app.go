package renderer

import (
	"errors"
	"fmt"

	"github.com/vango-dev/vcore/pkg/host"
	"github.com/vango-dev/vcore/pkg/vdom"
)

// ErrAlreadyMounted is returned by Mount on a mounted app.
var ErrAlreadyMounted = errors.New("renderer: app already mounted")

// App is a root component bound to a renderer.
type App struct {
	r         *Renderer
	root      *Component
	props     vdom.Props
	vnode     *vdom.VNode
	container host.Node
}

// CreateApp prepares root for mounting with the given props.
func (r *Renderer) CreateApp(root *Component, props vdom.Props) *App {
	return &App{r: r, root: root, props: props}
}

// Mount renders the app into the first host node matching selector.
func (a *App) Mount(selector string) (*Instance, error) {
	container := a.r.host.QuerySelector(selector)
	if container == nil {
		return nil, fmt.Errorf("renderer: no container matches %q", selector)
	}
	return a.MountTo(container)
}

// MountTo renders the app into container.
func (a *App) MountTo(container host.Node) (*Instance, error) {
	if a.vnode != nil {
		return nil, ErrAlreadyMounted
	}
	a.vnode = vdom.Comp(a.root, a.props)
	a.container = container
	a.r.Render(a.vnode, container)
	return a.Root(), nil
}

// Root returns the root instance, or nil before Mount.
func (a *App) Root() *Instance {
	if a.vnode == nil {
		return nil
	}
	inst, _ := a.vnode.Instance.(*Instance)
	return inst
}

// Unmount tears the app down and empties its container.
func (a *App) Unmount() {
	if a.vnode == nil {
		return
	}
	a.r.Render(nil, a.container)
	a.vnode = nil
	a.container = nil
}

// NextTick runs fn after the next flush.
func (a *App) NextTick(fn func()) {
	a.r.NextTick(fn)
}
