// Command vcore runs and exercises the vcore reactive runtime.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vcore/internal/config"
	"github.com/vango-dev/vcore/internal/logging"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "vcore",
		Short: "Reactive state and tree reconciliation runtime",
		Long: `vcore keeps rendered trees in sync with reactive state.

Writes to reactive objects are tracked per key, batched by a
scheduler and applied to a host tree with a keyed diff that
moves the fewest nodes. The server streams those host ops to
clients over WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to vcore.yaml (default: ./vcore.yaml if present)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")

	cmd.AddCommand(
		serveCmd(flags),
		demoCmd(),
		benchCmd(flags),
		configCmd(flags),
		versionCmd(),
	)
	return cmd
}

// load reads the configuration and applies the global flag overrides.
// Without --config a missing ./vcore.yaml means defaults.
func (f *globalFlags) load() (*config.Config, error) {
	cfg := config.Default()
	switch {
	case f.configPath != "":
		loaded, err := config.LoadFile(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case fileExists(config.ConfigFileName):
		loaded, err := config.Load(".")
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg and installs it as the
// slog default.
func newLogger(cfg *config.Config) *slog.Logger {
	level := &slog.LevelVar{}
	if l, err := cfg.LogLevel(); err == nil {
		level.Set(l)
	}
	logger := logging.New(logging.Options{
		Level: level,
		JSON:  cfg.Log.Format == "json",
	})
	slog.SetDefault(logger)
	return logger
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
