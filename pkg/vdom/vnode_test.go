package vdom

import "testing"

type testComp struct{ name string }

func (c *testComp) ComponentName() string { return c.name }

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindComment, "Comment"},
		{KindFragment, "Fragment"},
		{KindComponent, "Component"},
		{VKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("VKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestCreateElement(t *testing.T) {
	node := Div(ID("main"), Class("a", "b"), Key("k1"),
		Span("hello"),
		nil,
		OnClick(func() {}),
	)

	if node.Kind != KindElement || node.Tag != "div" {
		t.Fatalf("node = %v %q, want Element div", node.Kind, node.Tag)
	}
	if node.Key != "k1" {
		t.Errorf("Key = %v, want k1", node.Key)
	}
	if _, ok := node.Props["key"]; ok {
		t.Error("key leaked into props")
	}
	if node.Props["class"] != "a b" {
		t.Errorf("class = %v, want %q", node.Props["class"], "a b")
	}
	if len(node.Children) != 1 || node.Children[0].Tag != "span" {
		t.Fatalf("children = %v, want one span", node.Children)
	}
	if text := node.Children[0].Children[0]; text.Kind != KindText || text.Text != "hello" {
		t.Errorf("span child = %v %q, want text hello", text.Kind, text.Text)
	}
	if !node.IsInteractive() {
		t.Error("IsInteractive() = false with onclick")
	}
}

func TestTextContent(t *testing.T) {
	node := P(TextContent("count: 0"))
	if !node.HasTextContent() {
		t.Error("HasTextContent() = false")
	}
	if P("x").HasTextContent() {
		t.Error("HasTextContent() = true with a text child")
	}
}

func TestIsSameType(t *testing.T) {
	a := &testComp{name: "A"}
	b := &testComp{name: "B"}

	tests := []struct {
		name string
		x, y *VNode
		want bool
	}{
		{"same tag", Div(), Div(), true},
		{"different tag", Div(), Span(), false},
		{"same key", Li(Key(1)), Li(Key(1)), true},
		{"different key", Li(Key(1)), Li(Key(2)), false},
		{"keyed vs unkeyed", Li(Key(1)), Li(), false},
		{"text", Text("a"), Text("b"), true},
		{"text vs comment", Text("a"), Comment("a"), false},
		{"same component", Comp(a), Comp(a), true},
		{"different component", Comp(a), Comp(b), false},
		{"nil", nil, Div(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSameType(tt.x, tt.y); got != tt.want {
				t.Errorf("IsSameType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFragmentAndComp(t *testing.T) {
	f := Fragment(Key("f"), Text("a"), "b", []*VNode{Text("c")})
	if f.Key != "f" {
		t.Errorf("fragment Key = %v, want f", f.Key)
	}
	if len(f.Children) != 3 {
		t.Errorf("len(children) = %d, want 3", len(f.Children))
	}

	c := Comp(&testComp{name: "X"}, Props{"title": "t"}, On("change", 1), Text("ignored"))
	if c.Props["title"] != "t" || c.Props["onchange"] != 1 {
		t.Errorf("props = %v", c.Props)
	}
	if c.Children != nil {
		t.Errorf("children = %v, want nil", c.Children)
	}
}

func TestClone(t *testing.T) {
	orig := Div(ID("x"), Span("y"))
	orig.El = "host"
	c := orig.Clone()

	if c.El != nil {
		t.Error("Clone kept El")
	}
	c.Props["id"] = "z"
	if orig.Props["id"] != "x" {
		t.Error("Clone shares props")
	}
	if c.Children[0] == orig.Children[0] {
		t.Error("Clone shares children")
	}
}

func TestRangeAndRepeat(t *testing.T) {
	items := []string{"a", "b", "c"}
	nodes := Range(items, func(s string, i int) *VNode {
		if i == 1 {
			return nil
		}
		return Li(Key(s), s)
	})
	if len(nodes) != 2 {
		t.Errorf("Range len = %d, want 2", len(nodes))
	}
	if got := Repeat(0, func(int) *VNode { return Div() }); got != nil {
		t.Errorf("Repeat(0) = %v, want nil", got)
	}
	if got := Repeat(3, func(int) *VNode { return Div() }); len(got) != 3 {
		t.Errorf("Repeat(3) len = %d, want 3", len(got))
	}
}

func TestEventProp(t *testing.T) {
	if got := EventProp("Click"); got != "onclick" {
		t.Errorf("EventProp = %q, want onclick", got)
	}
	if !IsEvent("onclick") || IsEvent("on") || IsEvent("class") {
		t.Error("IsEvent mismatch")
	}
	if !IsVoidElement("br") || IsVoidElement("div") {
		t.Error("IsVoidElement mismatch")
	}
}

func TestFormControls(t *testing.T) {
	var typed string
	node := Label(
		H2("Name"),
		Input(Type("text"), Value("ada"), Disabled(false), OnInput(func(v string) { typed = v })),
	)

	if len(node.Children) != 2 {
		t.Fatalf("children = %v, want h2 and input", node.Children)
	}
	input := node.Children[1]
	if input.Tag != "input" || !IsVoidElement(input.Tag) {
		t.Errorf("input tag = %q, want void input", input.Tag)
	}
	if input.Props["type"] != "text" || input.Props["value"] != "ada" || input.Props["disabled"] != false {
		t.Errorf("input props = %v", input.Props)
	}
	handler, ok := input.Props["oninput"].(func(string))
	if !ok {
		t.Fatalf("oninput = %T, want func(string)", input.Props["oninput"])
	}
	handler("grace")
	if typed != "grace" {
		t.Errorf("typed = %q, want grace", typed)
	}
}

func TestConditionalHelpers(t *testing.T) {
	yes, no := P("yes"), P("no")
	if If(true, yes) != yes || If(false, yes) != nil {
		t.Error("If mismatch")
	}
	if IfElse(false, yes, no) != no {
		t.Error("IfElse(false) did not return the second node")
	}
	called := false
	if When(false, func() *VNode { called = true; return yes }) != nil || called {
		t.Error("When(false) evaluated its function")
	}
	if When(true, func() *VNode { return yes }) != yes {
		t.Error("When(true) mismatch")
	}

	list := Ul(If(false, Li("hidden")), Li("shown"))
	if len(list.Children) != 1 {
		t.Errorf("children = %d, want nil nodes skipped", len(list.Children))
	}
}
