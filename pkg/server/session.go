package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	verrors "github.com/vango-dev/vcore/internal/errors"
	"github.com/vango-dev/vcore/pkg/host/remote"
	"github.com/vango-dev/vcore/pkg/protocol"
	"github.com/vango-dev/vcore/pkg/reactive"
	"github.com/vango-dev/vcore/pkg/renderer"
	"github.com/vango-dev/vcore/pkg/scheduler"
)

// ContainerID is the id attribute of the element each session mounts into.
const ContainerID = "app"

// Session is one connected client. It owns a reactive runtime, a scheduler
// queue and a renderer whose host mirrors the client tree. All of them are
// driven from the goroutine running the session's loop.
type Session struct {
	id      string
	conn    *websocket.Conn
	config  SessionConfig
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	loop     *scheduler.Loop
	host     *remote.Host
	renderer *renderer.Renderer
	app      *renderer.App

	send    chan []byte
	limiter *rate.Limiter

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(s *Server, conn *websocket.Conn) *Session {
	sess := &Session{
		id:      generateSessionID(),
		conn:    conn,
		config:  s.config.Session,
		metrics: s.metrics,
		tracer:  s.tracer,
		send:    make(chan []byte, s.config.Session.SendQueue),
		done:    make(chan struct{}),
	}
	sess.logger = s.logger.With("session", sess.id)
	if s.config.Session.EventRate > 0 {
		burst := s.config.Session.EventBurst
		if burst <= 0 {
			burst = 1
		}
		sess.limiter = rate.NewLimiter(rate.Limit(s.config.Session.EventRate), burst)
	}

	sess.loop = scheduler.NewLoop(sess.config.TaskQueue,
		scheduler.WithLoopLogger(sess.logger.With("component", "loop")))
	queue := scheduler.New(
		scheduler.WithLogger(sess.logger.With("component", "scheduler")),
		scheduler.WithDeferrer(sess.loop.Defer),
		scheduler.WithRecursionLimit(sess.config.RecursionLimit),
		scheduler.WithObserver(observers{
			flushObserver{s.metrics},
			&flushTracer{tracer: s.tracer, session: sess.id},
			sess,
		}),
	)
	rt := reactive.NewRuntime(reactive.WithLogger(sess.logger.With("component", "reactive")))

	sess.host = remote.New()
	sess.renderer = renderer.New(sess.host, rt, queue,
		renderer.WithLogger(sess.logger.With("component", "renderer")),
		renderer.WithTracer(s.tracer),
	)
	sess.app = sess.renderer.CreateApp(s.root, s.props)
	return sess
}

// ID returns the session id sent to the client in the hello frame.
func (s *Session) ID() string {
	return s.id
}

// serve mounts the app and runs the session loop on the calling goroutine
// until ctx is cancelled, the client disconnects or Close is called.
func (s *Session) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.writeLoop()
	go s.readLoop(cancel)

	s.loop.Do(s.start)
	_ = s.loop.Run(ctx)

	s.Close()
	s.loop.Do(s.app.Unmount)
}

// start sends the hello frame and mounts the app. Runs on the loop.
func (s *Session) start() {
	container := s.host.Container(ContainerID)
	s.sendFrame(protocol.FrameHello, protocol.EncodeHello(&protocol.Hello{
		SessionID: s.id,
		Root:      container.ID,
	}))
	if _, err := s.app.MountTo(container); err != nil {
		s.logger.Error("mount failed", "error", err)
		s.Close()
		return
	}
	s.loop.Defer(s.flushOps)
}

// FlushStarted implements scheduler.Observer.
func (s *Session) FlushStarted() {}

// FlushFinished implements scheduler.Observer. The ops produced by the
// flush go out at the end of the current checkpoint.
func (s *Session) FlushFinished(scheduler.FlushStats) {
	s.loop.Defer(s.flushOps)
}

// JobFailed implements scheduler.Observer.
func (s *Session) JobFailed(*scheduler.Job, error) {}

// flushOps sends the ops recorded since the last call as one frame.
func (s *Session) flushOps() {
	f := s.host.Flush()
	if f == nil {
		return
	}
	payload := protocol.EncodeOps(f)
	if n := s.sendFrame(protocol.FrameOps, payload); n > 0 {
		s.metrics.frameSent(len(f.Ops), n)
	}
}

// handleEvent dispatches a client event to its handler. Runs on the loop.
func (s *Session) handleEvent(ev *protocol.Event) {
	_, span := s.tracer.Start(context.Background(), "vcore.event",
		trace.WithAttributes(
			attribute.String("vcore.session", s.id),
			attribute.String("vcore.event", ev.Name),
			attribute.Int64("vcore.node", int64(ev.Node)),
		),
	)
	defer span.End()

	if err := s.host.HandleEvent(ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.event("error")
		s.logger.Debug("event failed", "event", ev.Name, "node", ev.Node, "error", err)
		s.sendError(err, false)
		return
	}
	s.metrics.event("ok")
	s.loop.Defer(s.flushOps)
}

// readLoop decodes inbound frames and posts events to the loop.
func (s *Session) readLoop(cancel context.CancelFunc) {
	defer cancel()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error", "error", err)
				s.metrics.wsError("read")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		if msgType != websocket.BinaryMessage {
			s.sendError(verrors.New("P001").WithDetail("expected a binary message"), false)
			continue
		}
		s.handleMessage(data)
	}
}

func (s *Session) handleMessage(data []byte) {
	frame, err := protocol.DecodeFrame(data)
	if err != nil {
		s.sendError(verrors.New("P001").Wrap(err), false)
		return
	}

	switch frame.Type {
	case protocol.FrameEvent:
		ev, err := protocol.DecodeEvent(frame.Payload)
		if err != nil {
			s.sendError(verrors.New("P001").WithDetail("event payload").Wrap(err), false)
			return
		}
		if s.limiter != nil && !s.limiter.Allow() {
			s.metrics.event("dropped")
			return
		}
		if !s.loop.Dispatch(func() { s.handleEvent(ev) }) {
			s.metrics.event("dropped")
		}
	default:
		s.sendError(verrors.New("P001").WithDetailf("unexpected %s frame", frame.Type), false)
	}
}

// writeLoop writes queued frames and heartbeats. It owns the connection
// and closes it when the session ends.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				s.logger.Debug("websocket write error", "error", err)
				s.metrics.wsError("write")
				s.Close()
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.metrics.wsError("ping")
				s.Close()
				return
			}

		case <-s.done:
			_ = s.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			return
		}
	}
}

// sendFrame queues a frame for the writer and returns its encoded size,
// or 0 if it was not queued. A full queue means the client stalled; the
// session is closed.
func (s *Session) sendFrame(ft protocol.FrameType, payload []byte) int {
	msg := protocol.NewFrame(ft, payload).Encode()
	select {
	case <-s.done:
		return 0
	default:
	}
	select {
	case s.send <- msg:
		return len(msg)
	case <-s.done:
		return 0
	default:
		s.logger.Warn("send queue full, closing session")
		s.metrics.wsError("stalled")
		s.Close()
		return 0
	}
}

// sendError reports err to the client as an error frame.
func (s *Session) sendError(err error, fatal bool) {
	msg := &protocol.ErrorMessage{Message: err.Error(), Fatal: fatal}
	var verr *verrors.VangoError
	if errors.As(err, &verr) {
		msg.Code = verr.Code
	}
	s.sendFrame(protocol.FrameError, protocol.EncodeError(msg))
}

// Close ends the session. It is safe to call from any goroutine and more
// than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.loop.Close()
	})
}

// Done is closed once the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("server: crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
