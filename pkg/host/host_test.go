package host

import "testing"

func TestInvoke(t *testing.T) {
	var got []string
	handlers := []any{
		func() { got = append(got, "plain") },
		func(ev Event) { got = append(got, "event:"+ev.Type) },
		func(v any) { got = append(got, v.(string)) },
		func(s string) { got = append(got, "s:"+s) },
	}
	for _, h := range handlers {
		if err := Invoke(h, Event{Type: "click", Payload: "p"}); err != nil {
			t.Fatalf("Invoke: %v", err)
		}
	}
	want := []string{"plain", "event:click", "p", "s:p"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if err := Invoke(nil, Event{Type: "click"}); err == nil {
		t.Error("Invoke(nil) returned nil error")
	}
	if err := Invoke(42, Event{Type: "click"}); err == nil {
		t.Error("Invoke(42) returned nil error")
	}
}

func TestInvokeSlice(t *testing.T) {
	n := 0
	h := []any{func() { n++ }, func() { n++ }}
	if err := Invoke(h, Event{}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}
}
