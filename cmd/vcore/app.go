package main

import (
	"fmt"

	"github.com/vango-dev/vcore/pkg/reactive"
	"github.com/vango-dev/vcore/pkg/renderer"
	"github.com/vango-dev/vcore/pkg/vdom"
)

// demoApp is the app served by "serve" and driven by "demo" and "bench":
// a counter and a keyed list that can be grown, rotated and reversed.
func demoApp() *renderer.Component {
	counter, list := counterComponent(), listComponent()
	return &renderer.Component{
		Name:  "Demo",
		Props: []string{"title"},
		Render: func(ctx *renderer.Instance) *vdom.VNode {
			return vdom.Main(
				vdom.H1(vdom.Textf("%v", ctx.Props().Get("title"))),
				vdom.Comp(counter),
				vdom.Comp(list),
			)
		},
	}
}

func counterComponent() *renderer.Component {
	return &renderer.Component{
		Name: "Counter",
		Setup: func(ctx *renderer.Instance) any {
			return ctx.Runtime().Reactive(map[string]any{"count": 0})
		},
		Render: func(ctx *renderer.Instance) *vdom.VNode {
			state := ctx.State().(*reactive.Object)
			return vdom.Button(
				vdom.ID("increment"),
				vdom.OnClick(func() { _ = state.Set("count", state.Get("count").(int)+1) }),
				vdom.Textf("count: %v", state.Get("count")),
			)
		},
	}
}

type listState struct {
	items *reactive.Array
	size  *reactive.Computed[int]
	next  int
}

func (s *listState) add() {
	s.next++
	_ = s.items.Push(fmt.Sprintf("item %d", s.next))
}

// rotate moves the last item to the front: one host move.
func (s *listState) rotate() {
	if s.items.Len() < 2 {
		return
	}
	last, _ := s.items.Pop()
	_ = s.items.Insert(0, last)
}

func (s *listState) reverse() {
	values := s.items.Values()
	for i, v := range values {
		_ = s.items.Set(len(values)-1-i, v)
	}
}

func listComponent() *renderer.Component {
	return &renderer.Component{
		Name: "List",
		Setup: func(ctx *renderer.Instance) any {
			rt := ctx.Runtime()
			items := rt.Reactive(&[]any{}).(*reactive.Array)
			s := &listState{
				items: items,
				size:  reactive.NewComputed(rt, func() int { return items.Len() }),
			}
			for i := 0; i < 3; i++ {
				s.add()
			}
			return s
		},
		Render: func(ctx *renderer.Instance) *vdom.VNode {
			s := ctx.State().(*listState)
			return vdom.Section(
				vdom.Button(vdom.ID("add"), vdom.OnClick(s.add), "add"),
				vdom.Button(vdom.ID("rotate"), vdom.OnClick(s.rotate), "rotate"),
				vdom.Button(vdom.ID("reverse"), vdom.OnClick(s.reverse), "reverse"),
				vdom.Ul(vdom.Range(s.items.Values(), func(item any, _ int) *vdom.VNode {
					return vdom.Li(vdom.Key(item), vdom.Textf("%v", item))
				})),
				vdom.P(vdom.Textf("%d items", s.size.Get())),
			)
		},
	}
}
