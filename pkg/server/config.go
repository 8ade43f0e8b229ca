package server

import (
	"net/http"
	"time"
)

// Config holds configuration for the HTTP/WebSocket server.
type Config struct {
	// Address is the address to listen on (e.g., ":8080").
	// Default: ":8080".
	Address string

	// WebSocketPath is the route sessions connect to.
	// Default: "/ws".
	WebSocketPath string

	// MetricsPath is the route serving Prometheus metrics. Empty disables
	// the route.
	// Default: "/metrics".
	MetricsPath string

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	// Default: 4096.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the request origin.
	// Default: allows all origins.
	CheckOrigin func(r *http.Request) bool

	// Session is the per-connection configuration.
	Session SessionConfig

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration
}

// SessionConfig holds configuration for individual sessions.
type SessionConfig struct {
	// ReadTimeout is how long a connection may stay silent, pongs included.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between pings.
	// Default: 25 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the largest inbound message accepted.
	// Default: 64KB.
	MaxMessageSize int64

	// SendQueue is the number of outbound frames buffered before the
	// session is considered stalled and closed.
	// Default: 64.
	SendQueue int

	// TaskQueue is the loop's Dispatch buffer.
	// Default: 256.
	TaskQueue int

	// EventRate and EventBurst limit inbound events per session. A zero
	// rate disables limiting.
	// Default: 50 events/s, burst 100.
	EventRate  float64
	EventBurst int

	// RecursionLimit overrides the scheduler's per-flush job run limit.
	RecursionLimit int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:         ":8080",
		WebSocketPath:   "/ws",
		MetricsPath:     "/metrics",
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(*http.Request) bool { return true },
		Session:         DefaultSessionConfig(),
		ShutdownTimeout: 10 * time.Second,
	}
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 25 * time.Second,
		MaxMessageSize:    64 * 1024,
		SendQueue:         64,
		TaskQueue:         256,
		EventRate:         50,
		EventBurst:        100,
	}
}

// withDefaults fills unset fields from the defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.WebSocketPath == "" {
		c.WebSocketPath = d.WebSocketPath
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}

	s, ds := &c.Session, d.Session
	if s.ReadTimeout == 0 {
		s.ReadTimeout = ds.ReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = ds.WriteTimeout
	}
	if s.HeartbeatInterval == 0 {
		s.HeartbeatInterval = ds.HeartbeatInterval
	}
	if s.MaxMessageSize == 0 {
		s.MaxMessageSize = ds.MaxMessageSize
	}
	if s.SendQueue == 0 {
		s.SendQueue = ds.SendQueue
	}
	if s.TaskQueue == 0 {
		s.TaskQueue = ds.TaskQueue
	}
	return c
}
