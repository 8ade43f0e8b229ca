package renderer

import (
	"errors"
	"testing"

	"github.com/vango-dev/vcore/pkg/vdom"
)

func greeter() *Component {
	return &Component{
		Name:  "Greeter",
		Props: []string{"name"},
		Render: func(ctx *Instance) *vdom.VNode {
			return vdom.H1(vdom.Textf("hello %v", ctx.Props().Get("name")))
		},
	}
}

func TestAppMount(t *testing.T) {
	f := newFixture(t)
	app := f.r.CreateApp(greeter(), vdom.Props{"name": "ann"})
	if app.Root() != nil {
		t.Error("Root() before Mount should be nil")
	}

	inst, err := app.Mount("#app")
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if got := f.html(); got != "<h1>hello ann</h1>" {
		t.Errorf("HTML = %q", got)
	}
	if inst == nil || inst != app.Root() || !inst.IsMounted() {
		t.Fatal("Mount() should return the mounted root instance")
	}
	if inst.Name() != "Greeter" || inst.Parent() != nil {
		t.Errorf("root instance = %s (parent %v)", inst.Name(), inst.Parent())
	}

	if _, err := app.Mount("#app"); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("second Mount() error = %v, want ErrAlreadyMounted", err)
	}

	ticked := false
	app.NextTick(func() { ticked = true })
	f.r.Queue().Flush()
	if !ticked {
		t.Error("NextTick callback did not run")
	}

	app.Unmount()
	if got := f.html(); got != "" {
		t.Errorf("HTML after Unmount = %q", got)
	}
	if inst.IsMounted() {
		t.Error("instance still reports mounted")
	}
	if app.Root() != nil {
		t.Error("Root() after Unmount should be nil")
	}
}

func TestAppMountMissingContainer(t *testing.T) {
	f := newFixture(t)
	if _, err := f.r.CreateApp(greeter(), nil).Mount("#nope"); err == nil {
		t.Error("Mount() on a missing container should fail")
	}
}

func TestInstanceUpdateForcesRender(t *testing.T) {
	f := newFixture(t)
	label := "a"
	var inst *Instance
	comp := &Component{
		Name: "Plain",
		Setup: func(ctx *Instance) any {
			inst = ctx
			return nil
		},
		Render: func(*Instance) *vdom.VNode { return vdom.Span(label) },
	}
	f.render(vdom.Comp(comp))

	label = "b"
	inst.Update()
	f.r.Queue().Flush()
	if got := f.html(); got != "<span>b</span>" {
		t.Errorf("HTML = %q", got)
	}
}

func TestForeignComponentRendersPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.render(vdom.Comp(foreign{}))
	if got := f.html(); got != "<!--Foreign-->" {
		t.Errorf("HTML = %q", got)
	}
}

type foreign struct{}

func (foreign) ComponentName() string { return "Foreign" }
