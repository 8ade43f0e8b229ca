package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/vcore/pkg/protocol"
	"github.com/vango-dev/vcore/pkg/reactive"
	"github.com/vango-dev/vcore/pkg/renderer"
	"github.com/vango-dev/vcore/pkg/vdom"
)

func counter() *renderer.Component {
	return &renderer.Component{
		Name: "Counter",
		Setup: func(ctx *renderer.Instance) any {
			return ctx.Runtime().Reactive(map[string]any{"count": 0})
		},
		Render: func(ctx *renderer.Instance) *vdom.VNode {
			state := ctx.State().(*reactive.Object)
			return vdom.Button(
				vdom.OnClick(func() { _ = state.Set("count", state.Get("count").(int)+1) }),
				vdom.Textf("count: %v", state.Get("count")),
			)
		},
	}
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(counter(), append([]Option{WithLogger(logger)}, opts...)...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn, want protocol.FrameType) *protocol.Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Fatalf("message type = %d, want binary", msgType)
	}
	f, err := protocol.DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if f.Type != want {
		t.Fatalf("frame type = %s, want %s", f.Type, want)
	}
	return f
}

func readOps(t *testing.T, conn *websocket.Conn) *protocol.OpsFrame {
	t.Helper()
	ops, err := protocol.DecodeOps(readFrame(t, conn, protocol.FrameOps).Payload)
	if err != nil {
		t.Fatalf("DecodeOps() error = %v", err)
	}
	return ops
}

func readError(t *testing.T, conn *websocket.Conn) *protocol.ErrorMessage {
	t.Helper()
	msg, err := protocol.DecodeError(readFrame(t, conn, protocol.FrameError).Payload)
	if err != nil {
		t.Fatalf("DecodeError() error = %v", err)
	}
	return msg
}

func sendEvent(t *testing.T, conn *websocket.Conn, ev *protocol.Event) {
	t.Helper()
	frame := protocol.NewFrame(protocol.FrameEvent, protocol.EncodeEvent(ev)).Encode()
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

// handshake reads the hello and mount frames and returns the button's id.
func handshake(t *testing.T, conn *websocket.Conn) uint32 {
	t.Helper()
	hello, err := protocol.DecodeHello(readFrame(t, conn, protocol.FrameHello).Payload)
	if err != nil {
		t.Fatalf("DecodeHello() error = %v", err)
	}
	if len(hello.SessionID) != 32 {
		t.Errorf("session id = %q, want 32 hex chars", hello.SessionID)
	}

	mount := readOps(t, conn)
	if mount.Seq != 1 {
		t.Errorf("mount seq = %d, want 1", mount.Seq)
	}
	var button uint32
	for _, op := range mount.Ops {
		switch {
		case op.Code == protocol.OpCreateElement && op.Value == "button":
			button = op.Node
		case op.Code == protocol.OpInsert && op.Node == button && op.Parent != hello.Root:
			t.Errorf("button inserted into %d, want container %d", op.Parent, hello.Root)
		}
	}
	if button == 0 {
		t.Fatalf("mount ops %v create no button", mount.Ops)
	}
	return button
}

func TestHealthz(t *testing.T) {
	srv := New(counter())
	defer srv.Close()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "ok\n" {
		t.Errorf("body = %q", got)
	}
}

func TestMetricsRoute(t *testing.T) {
	srv := New(counter(), WithMetrics(MetricsConfig{Namespace: "app"}))
	defer srv.Close()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "app_sessions_active") {
		t.Errorf("metrics output lacks app_sessions_active:\n%s", rec.Body.String())
	}
}

func TestMetricsRouteDisabled(t *testing.T) {
	config := DefaultConfig()
	config.MetricsPath = ""
	srv := New(counter(), WithConfig(config))
	defer srv.Close()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSessionClickRoundTrip(t *testing.T) {
	srv, ts := newTestServer(t)
	conn := dial(t, ts)
	button := handshake(t, conn)

	sendEvent(t, conn, &protocol.Event{Seq: 1, Node: button, Name: "click"})
	patch := readOps(t, conn)

	if patch.Seq != 2 {
		t.Errorf("patch seq = %d, want 2", patch.Seq)
	}
	if len(patch.Ops) != 1 {
		t.Fatalf("patch ops = %v, want one op", patch.Ops)
	}
	if op := patch.Ops[0]; op.Code != protocol.OpSetText || op.Value != "count: 1" {
		t.Errorf("patch op = %+v, want SetText \"count: 1\"", op)
	}

	if got := testutil.ToFloat64(srv.metrics.eventsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("events_total{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(srv.metrics.sessionsTotal); got != 1 {
		t.Errorf("sessions_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(srv.metrics.flushesTotal); got < 1 {
		t.Errorf("flushes_total = %v, want at least 1", got)
	}
}

func TestSessionMalformedFrame(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)
	handshake(t, conn)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0xff}); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	if msg := readError(t, conn); msg.Code != "P001" || msg.Fatal {
		t.Errorf("error = %+v, want non-fatal P001", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hi")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	if msg := readError(t, conn); msg.Code != "P001" {
		t.Errorf("error code = %q, want P001", msg.Code)
	}
}

func TestSessionUnknownNode(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)
	button := handshake(t, conn)

	sendEvent(t, conn, &protocol.Event{Seq: 1, Node: 9999, Name: "click"})
	if msg := readError(t, conn); msg.Code != "P002" || msg.Fatal {
		t.Errorf("error = %+v, want non-fatal P002", msg)
	}

	// The session keeps serving.
	sendEvent(t, conn, &protocol.Event{Seq: 2, Node: button, Name: "click"})
	if patch := readOps(t, conn); len(patch.Ops) != 1 || patch.Ops[0].Value != "count: 1" {
		t.Errorf("patch ops = %v", patch.Ops)
	}
}

func TestSessionRateLimit(t *testing.T) {
	config := DefaultConfig()
	config.Session.EventRate = 0.001
	config.Session.EventBurst = 1
	srv, ts := newTestServer(t, WithConfig(config))
	conn := dial(t, ts)
	button := handshake(t, conn)

	sendEvent(t, conn, &protocol.Event{Seq: 1, Node: button, Name: "click"})
	sendEvent(t, conn, &protocol.Event{Seq: 2, Node: button, Name: "click"})
	// Frames are read in order, so the P001 reply means both events were seen.
	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0xff}); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	// The error comes from the reader and the patch from the loop, in
	// either order.
	var got []protocol.FrameType
	for i := 0; i < 2; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		f, err := protocol.DecodeFrame(data)
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}
		got = append(got, f.Type)
		if f.Type == protocol.FrameOps {
			ops, _ := protocol.DecodeOps(f.Payload)
			if len(ops.Ops) != 1 || ops.Ops[0].Value != "count: 1" {
				t.Errorf("patch ops = %v, want a single click applied", ops.Ops)
			}
		}
	}
	if len(got) != 2 || got[0] == got[1] {
		t.Errorf("frames = %v, want one Ops and one Error", got)
	}

	if got := testutil.ToFloat64(srv.metrics.eventsTotal.WithLabelValues("dropped")); got != 1 {
		t.Errorf("events_total{dropped} = %v, want 1", got)
	}
}

func TestSessionsTracked(t *testing.T) {
	srv, ts := newTestServer(t)
	conn := dial(t, ts)
	handshake(t, conn)

	if n := srv.Sessions(); n != 1 {
		t.Errorf("Sessions() = %d, want 1", n)
	}
	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Sessions() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session still tracked after the client disconnected")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := testutil.ToFloat64(srv.metrics.sessionsActive); got != 0 {
		t.Errorf("sessions_active = %v, want 0", got)
	}
}

func TestCloseRejectsNewSessions(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Dial() succeeded after Close")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("response = %v, want 503", resp)
	}
}
