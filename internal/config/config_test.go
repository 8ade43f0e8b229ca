package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vcore/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, DefaultAddress)
	}
	if cfg.Scheduler.RecursionLimit != 100 {
		t.Errorf("Scheduler.RecursionLimit = %d, want 100", cfg.Scheduler.RecursionLimit)
	}
	if !cfg.Metrics.Enabled || cfg.Tracing.Enabled {
		t.Errorf("Metrics.Enabled = %v, Tracing.Enabled = %v", cfg.Metrics.Enabled, cfg.Tracing.Enabled)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	var verr *errors.VangoError
	if !stderrors.As(err, &verr) || verr.Code != "F002" {
		t.Fatalf("Load() on empty dir error = %v, want F002", err)
	}

	data := `server:
  address: "127.0.0.1:9000"
  read_timeout: 2m
  event_rate: 0
log:
  level: debug
  format: json
tracing:
  enabled: true
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:9000" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.Server.ReadTimeout != 2*time.Minute {
		t.Errorf("Server.ReadTimeout = %v, want 2m", cfg.Server.ReadTimeout)
	}
	if cfg.Server.EventRate != 0 {
		t.Errorf("Server.EventRate = %v, want 0", cfg.Server.EventRate)
	}
	if cfg.Server.WebSocketPath != "/ws" {
		t.Errorf("Server.WebSocketPath = %q, want default /ws", cfg.Server.WebSocketPath)
	}
	if level, _ := cfg.LogLevel(); level != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, want debug", level)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.Tracer != DefaultTracer {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q, want default", cfg.Server.Address)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown key", "server:\n  port: 80\n", "port"},
		{"not yaml", "server: [\n", "parse"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"heartbeat too slow", "server:\n  heartbeat_interval: 2m\n", "heartbeat_interval"},
		{"relative ws path", "server:\n  websocket_path: ws\n", "websocket_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			var verr *errors.VangoError
			if !stderrors.As(err, &verr) || verr.Code != "F001" {
				t.Fatalf("LoadFile() error = %v, want F001", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.Address = ":7000"
	cfg.Server.HeartbeatInterval = 5 * time.Second
	cfg.Metrics.Enabled = false

	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "heartbeat_interval: 5s") {
		t.Errorf("saved file lacks a readable duration:\n%s", data)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Server.Address != ":7000" || loaded.Server.HeartbeatInterval != 5*time.Second || loaded.Metrics.Enabled {
		t.Errorf("loaded = %+v", loaded)
	}
}
