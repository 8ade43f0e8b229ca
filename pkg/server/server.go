package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vcore/pkg/renderer"
	"github.com/vango-dev/vcore/pkg/vdom"
)

// Server hosts one app instance per WebSocket connection.
type Server struct {
	config   Config
	root     *renderer.Component
	props    vdom.Props
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	mconfig  MetricsConfig
	tracer   trace.Tracer
	upgrader websocket.Upgrader
	router   chi.Router

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithConfig replaces the default configuration. Unset fields keep their
// defaults.
func WithConfig(config Config) Option {
	return func(s *Server) {
		s.config = config
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry registers the server's collectors with reg and serves it on
// the metrics route.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithMetrics configures collector naming.
func WithMetrics(config MetricsConfig) Option {
	return func(s *Server) {
		s.mconfig = config
	}
}

// WithTracer sets the tracer used for flush, event and component spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithProps sets the props passed to the root component of every session.
func WithProps(props vdom.Props) Option {
	return func(s *Server) {
		s.props = props
	}
}

// New creates a server that mounts root for every connection.
func New(root *renderer.Component, opts ...Option) *Server {
	s := &Server{
		config:   DefaultConfig(),
		root:     root,
		logger:   slog.Default().With("component", "server"),
		tracer:   otel.Tracer(TracerName),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.config = s.config.withDefaults()
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry, s.mconfig)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  s.config.ReadBufferSize,
		WriteBufferSize: s.config.WriteBufferSize,
		CheckOrigin:     s.config.CheckOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.config.MetricsPath != "" {
		r.Method(http.MethodGet, s.config.MetricsPath,
			promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	}
	r.Get(s.config.WebSocketPath, s.handleWebSocket)
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry returns the registry the server's collectors live in.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Config returns the effective configuration.
func (s *Server) Config() Config {
	return s.config
}

// Sessions returns the number of connected sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.ctx.Done():
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		s.metrics.wsError("upgrade")
		return
	}

	sess := newSession(s, conn)
	s.add(sess)
	defer s.remove(sess)

	sess.logger.Info("session started", "remote_addr", r.RemoteAddr)
	start := time.Now()
	sess.serve(s.ctx)
	sess.logger.Info("session ended", "duration", time.Since(start))
}

func (s *Server) add(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.wg.Add(1)
	s.metrics.sessionOpened()
}

func (s *Server) remove(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.metrics.sessionClosed()
	s.wg.Done()
}

// Close ends every session and refuses new ones.
func (s *Server) Close() {
	s.cancel()
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}
}

// Wait blocks until every session has finished or ctx is done.
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down within Config.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Address, "ws", s.config.WebSocketPath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "sessions", s.Sessions())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.Wait(shutdownCtx)
}
