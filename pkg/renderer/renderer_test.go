package renderer

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/vcore/pkg/host/memory"
	"github.com/vango-dev/vcore/pkg/reactive"
	"github.com/vango-dev/vcore/pkg/scheduler"
	"github.com/vango-dev/vcore/pkg/vdom"
)

type fixture struct {
	r    *Renderer
	h    *memory.Host
	root *memory.Node
	logs *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	h := memory.New()
	rt := reactive.NewRuntime(reactive.WithLogger(logger))
	q := scheduler.New(scheduler.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return &fixture{
		r:    New(h, rt, q, WithLogger(logger)),
		h:    h,
		root: h.Container("app"),
		logs: logs,
	}
}

func (f *fixture) render(v *vdom.VNode) {
	f.r.Render(v, f.root)
}

func (f *fixture) html() string {
	return memory.HTML(f.root)
}

func TestMountElementTree(t *testing.T) {
	f := newFixture(t)
	f.render(vdom.Div(vdom.ID("main"), vdom.Class("box"),
		vdom.Span("hello"),
		vdom.Comment("slot"),
		vdom.P(vdom.TextContent("text mode")),
	))

	want := `<div class="box" id="main"><span>hello</span><!--slot--><p>text mode</p></div>`
	if got := f.html(); got != want {
		t.Errorf("HTML = %q, want %q", got, want)
	}
	if f.h.Count(memory.OpSetElementText) != 1 {
		t.Errorf("setElementText = %d, want 1", f.h.Count(memory.OpSetElementText))
	}
}

func TestPatchReusesNodesAndDiffsProps(t *testing.T) {
	f := newFixture(t)
	f.render(vdom.Div(vdom.Class("a"), vdom.ID("x"), vdom.Span("one")))
	div := f.root.Children[0]
	span := div.Children[0]
	f.h.ResetOps()

	f.render(vdom.Div(vdom.Class("b"), vdom.Data("k", "v"), vdom.Span("two")))

	if f.root.Children[0] != div || div.Children[0] != span {
		t.Fatal("patch should reuse host nodes of the same type")
	}
	if got := f.html(); got != `<div class="b" data-k="v"><span>two</span></div>` {
		t.Errorf("HTML = %q", got)
	}
	if n := f.h.Count(memory.OpSetAttr); n != 2 {
		t.Errorf("setAttr = %d, want 2", n)
	}
	if n := f.h.Count(memory.OpRemoveAttr); n != 1 {
		t.Errorf("removeAttr = %d, want 1", n)
	}
	if n := f.h.Count(memory.OpSetText); n != 1 {
		t.Errorf("setText = %d, want 1", n)
	}
	if n := f.h.Count(memory.OpCreate); n != 0 {
		t.Errorf("create = %d, want 0", n)
	}
}

func TestUnchangedRenderIssuesNoOps(t *testing.T) {
	f := newFixture(t)
	tree := func() *vdom.VNode {
		return vdom.Ul(vdom.Class("list"), vdom.Li("a"), vdom.Li("b"))
	}
	f.render(tree())
	f.h.ResetOps()
	f.render(tree())
	if ops := f.h.Ops(); len(ops) != 0 {
		t.Errorf("ops = %v, want none", ops)
	}
}

func TestTypeMismatchReplacesInPlace(t *testing.T) {
	f := newFixture(t)
	f.render(vdom.Div(vdom.Span("a"), vdom.Em("b"), vdom.Span("c")))
	f.h.ResetOps()

	f.render(vdom.Div(vdom.Span("a"), vdom.Strong("b"), vdom.Span("c")))

	if got := f.html(); got != "<div><span>a</span><strong>b</strong><span>c</span></div>" {
		t.Errorf("HTML = %q", got)
	}
	if n := f.h.Count(memory.OpRemove); n != 1 {
		t.Errorf("remove = %d, want 1", n)
	}
}

func TestKeyMismatchReplaces(t *testing.T) {
	f := newFixture(t)
	f.render(vdom.Div(vdom.Key(1), "x"))
	first := f.root.Children[0]
	f.render(vdom.Div(vdom.Key(2), "x"))
	if f.root.Children[0] == first {
		t.Error("a different key must not reuse the host node")
	}
	if len(f.root.Children) != 1 {
		t.Errorf("children = %d, want 1", len(f.root.Children))
	}
}

func TestTextContentSwitching(t *testing.T) {
	f := newFixture(t)
	f.render(vdom.Div(vdom.TextContent("x")))
	f.render(vdom.Div(vdom.Span("child")))
	if got := f.html(); got != "<div><span>child</span></div>" {
		t.Errorf("HTML = %q", got)
	}
	f.render(vdom.Div(vdom.TextContent("y")))
	if got := f.html(); got != "<div>y</div>" {
		t.Errorf("HTML = %q", got)
	}
	f.render(vdom.Div())
	if got := f.html(); got != "<div></div>" {
		t.Errorf("HTML = %q", got)
	}
}

func TestEventHandlersArePatched(t *testing.T) {
	f := newFixture(t)
	var got []string
	view := func(label string) *vdom.VNode {
		return vdom.Button(vdom.OnClick(func() { got = append(got, label) }), "go")
	}
	f.render(view("first"))
	f.render(view("second"))

	btn := f.h.Query("button")
	if err := f.h.Dispatch(btn, "click", nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(got) != 1 || got[0] != "second" {
		t.Errorf("clicks = %v, want [second]", got)
	}

	f.render(vdom.Button("go"))
	if btn.Attr("onclick") != nil {
		t.Error("removed handler still bound")
	}
}

func TestFragmentMountPatchRemove(t *testing.T) {
	f := newFixture(t)
	view := func(items ...string) *vdom.VNode {
		list := make([]any, 0, len(items)+1)
		list = append(list, vdom.Key("f"))
		for _, it := range items {
			list = append(list, vdom.Li(it))
		}
		return vdom.Div(
			vdom.Span(vdom.Key("head"), "head"),
			vdom.Fragment(list...),
			vdom.Span(vdom.Key("tail"), "tail"),
		)
	}

	f.render(view("a", "b"))
	if got := f.html(); got != "<div><span>head</span><li>a</li><li>b</li><span>tail</span></div>" {
		t.Errorf("HTML = %q", got)
	}

	f.render(view("a", "b", "c"))
	if got := f.html(); got != "<div><span>head</span><li>a</li><li>b</li><li>c</li><span>tail</span></div>" {
		t.Errorf("HTML = %q", got)
	}

	f.h.ResetOps()
	f.render(vdom.Div(vdom.Span(vdom.Key("head"), "head"), vdom.Span(vdom.Key("tail"), "tail")))
	if got := f.html(); got != "<div><span>head</span><span>tail</span></div>" {
		t.Errorf("HTML = %q", got)
	}
	// Two anchors and three items, each removed once.
	if n := f.h.Count(memory.OpRemove); n != 5 {
		t.Errorf("remove = %d, want 5", n)
	}
	div := f.root.Children[0]
	if len(div.Children) != 2 {
		t.Errorf("children = %d, want 2", len(div.Children))
	}
}

func TestKeyedFragmentsMoveAsUnits(t *testing.T) {
	f := newFixture(t)
	group := func(key string) *vdom.VNode {
		return vdom.Fragment(vdom.Key(key), vdom.Span(key+"1"), vdom.Span(key+"2"))
	}
	f.render(vdom.Div(group("a"), group("b")))
	f.render(vdom.Div(group("b"), group("a")))

	want := "<div><span>b1</span><span>b2</span><span>a1</span><span>a2</span></div>"
	if got := f.html(); got != want {
		t.Errorf("HTML = %q, want %q", got, want)
	}
}

func TestRenderNilUnmounts(t *testing.T) {
	f := newFixture(t)
	f.render(vdom.Div(vdom.Span("x")))
	f.r.Render(nil, f.root)
	if len(f.root.Children) != 0 {
		t.Errorf("children = %d, want 0", len(f.root.Children))
	}
	// Only the outermost node is removed from the host.
	if n := f.h.Count(memory.OpRemove); n != 1 {
		t.Errorf("remove = %d, want 1", n)
	}
}

func TestReusedSnapshotNodeIsCloned(t *testing.T) {
	f := newFixture(t)
	shared := vdom.Span("same")
	f.render(vdom.Div(shared, shared))
	if got := f.html(); got != "<div><span>same</span><span>same</span></div>" {
		t.Errorf("HTML = %q", got)
	}
	div := f.root.Children[0]
	if div.Children[0] == div.Children[1] {
		t.Error("a snapshot node mounted twice must get two host nodes")
	}
}

func TestDuplicateKeysAreReported(t *testing.T) {
	f := newFixture(t)
	f.render(vdom.Ul(vdom.Li(vdom.Key("a"), "a"), vdom.Li(vdom.Key("b"), "b")))
	f.render(vdom.Ul(vdom.Li(vdom.Key("x"), "x"), vdom.Li(vdom.Key("x"), "y")))
	if !strings.Contains(f.logs.String(), "C001") {
		t.Errorf("logs = %q, want C001 diagnostic", f.logs.String())
	}
}
