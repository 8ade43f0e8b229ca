package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vcore/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vcore.yaml"

	// DefaultAddress is the default listen address.
	DefaultAddress = ":8080"

	// DefaultTracer is the default instrumentation name.
	DefaultTracer = "github.com/vango-dev/vcore"
)

// Config represents the complete vcore.yaml configuration.
type Config struct {
	// Server contains HTTP and WebSocket session settings.
	Server ServerConfig `yaml:"server"`

	// Scheduler contains per-session scheduler settings.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `yaml:"tracing"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server settings.
type ServerConfig struct {
	// Address is the listen address.
	Address string `yaml:"address"`

	// WebSocketPath is the route sessions connect to.
	WebSocketPath string `yaml:"websocket_path"`

	// ReadTimeout is how long a session may stay silent.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds one frame write.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// HeartbeatInterval is the time between pings.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// MaxMessageSize is the largest inbound message in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	// SendQueue is the number of outbound frames buffered per session.
	SendQueue int `yaml:"send_queue"`

	// EventRate and EventBurst limit inbound events per session.
	// A zero rate disables limiting.
	EventRate  float64 `yaml:"event_rate"`
	EventBurst int     `yaml:"event_burst"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SchedulerConfig contains scheduler settings.
type SchedulerConfig struct {
	// RecursionLimit is how often one job may run within a single flush.
	RecursionLimit int `yaml:"recursion_limit"`

	// TaskQueue is the session loop's inbound task buffer.
	TaskQueue int `yaml:"task_queue"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text (colored on terminals) or json.
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Tracer  string `yaml:"tracer"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:           DefaultAddress,
			WebSocketPath:     "/ws",
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      10 * time.Second,
			HeartbeatInterval: 25 * time.Second,
			MaxMessageSize:    64 * 1024,
			SendQueue:         64,
			EventRate:         50,
			EventBurst:        100,
			ShutdownTimeout:   10 * time.Second,
		},
		Scheduler: SchedulerConfig{
			RecursionLimit: 100,
			TaskQueue:      256,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "vcore",
		},
		Tracing: TracingConfig{
			Tracer: DefaultTracer,
		},
	}
}

// Load reads vcore.yaml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path. Keys absent from the file keep
// their defaults; unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("F002").
				WithDetail("no " + ConfigFileName + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("F001").Wrap(err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.New("F001").
			WithDetail("failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid YAML")
	}

	cfg.configPath = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("F001").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("F001").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New("F001").WithDetailf(format, args...)
	}

	s := c.Server
	if s.Address == "" {
		return invalid("server.address is empty")
	}
	if !strings.HasPrefix(s.WebSocketPath, "/") {
		return invalid("server.websocket_path %q must start with /", s.WebSocketPath)
	}
	if s.ReadTimeout <= 0 || s.WriteTimeout <= 0 || s.HeartbeatInterval <= 0 {
		return invalid("server timeouts must be positive")
	}
	if s.HeartbeatInterval >= s.ReadTimeout {
		return invalid("server.heartbeat_interval (%s) must be shorter than server.read_timeout (%s)",
			s.HeartbeatInterval, s.ReadTimeout)
	}
	if s.MaxMessageSize <= 0 || s.SendQueue <= 0 {
		return invalid("server.max_message_size and server.send_queue must be positive")
	}
	if s.EventRate < 0 || (s.EventRate > 0 && s.EventBurst <= 0) {
		return invalid("server.event_rate needs a positive server.event_burst")
	}

	if c.Scheduler.RecursionLimit <= 0 {
		return invalid("scheduler.recursion_limit must be positive")
	}
	if c.Scheduler.TaskQueue <= 0 {
		return invalid("scheduler.task_queue must be positive")
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format %q must be text or json", c.Log.Format)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path %q must start with /", c.Metrics.Path)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("F001").WithDetailf("log.level %q is not a level", c.Log.Level)
	}
	return level, nil
}
