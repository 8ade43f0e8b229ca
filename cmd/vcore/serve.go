package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/vcore/internal/config"
	"github.com/vango-dev/vcore/pkg/server"
	"github.com/vango-dev/vcore/pkg/vdom"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr  string
		title string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo app over WebSocket",
		Long: `Serve the demo app. Every WebSocket connection gets its own
reactive runtime and receives host ops for each flush.

Examples:
  vcore serve
  vcore serve --addr=127.0.0.1:9000
  vcore serve --config=deploy/vcore.yaml --log-format=json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			defer stop()

			srv := newServer(cfg, title)
			success("serving on %s%s", cfg.Server.Address, cfg.Server.WebSocketPath)
			if cfg.Metrics.Enabled {
				info("metrics at %s", cfg.Metrics.Path)
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from vcore.yaml)")
	cmd.Flags().StringVar(&title, "title", "vcore demo", "Title prop passed to the app")
	return cmd
}

// serverConfig maps the file configuration onto the server's.
func serverConfig(cfg *config.Config) server.Config {
	sc := server.DefaultConfig()
	sc.Address = cfg.Server.Address
	sc.WebSocketPath = cfg.Server.WebSocketPath
	sc.ShutdownTimeout = cfg.Server.ShutdownTimeout
	sc.MetricsPath = ""
	if cfg.Metrics.Enabled {
		sc.MetricsPath = cfg.Metrics.Path
	}
	sc.Session = server.SessionConfig{
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		HeartbeatInterval: cfg.Server.HeartbeatInterval,
		MaxMessageSize:    cfg.Server.MaxMessageSize,
		SendQueue:         cfg.Server.SendQueue,
		TaskQueue:         cfg.Scheduler.TaskQueue,
		EventRate:         cfg.Server.EventRate,
		EventBurst:        cfg.Server.EventBurst,
		RecursionLimit:    cfg.Scheduler.RecursionLimit,
	}
	return sc
}

func newServer(cfg *config.Config, title string) *server.Server {
	logger := newLogger(cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tracer := noop.NewTracerProvider().Tracer(cfg.Tracing.Tracer)
	if cfg.Tracing.Enabled {
		tracer = otel.Tracer(cfg.Tracing.Tracer)
	}

	return server.New(demoApp(),
		server.WithConfig(serverConfig(cfg)),
		server.WithLogger(logger.With("component", "server")),
		server.WithRegistry(reg),
		server.WithMetrics(server.MetricsConfig{Namespace: cfg.Metrics.Namespace}),
		server.WithTracer(tracer),
		server.WithProps(vdom.Props{"title": title}),
	)
}
