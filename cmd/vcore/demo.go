package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vcore/internal/logging"
	"github.com/vango-dev/vcore/pkg/host/memory"
	"github.com/vango-dev/vcore/pkg/reactive"
	"github.com/vango-dev/vcore/pkg/renderer"
	"github.com/vango-dev/vcore/pkg/scheduler"
	"github.com/vango-dev/vcore/pkg/vdom"
)

func demoCmd() *cobra.Command {
	var (
		clicks  int
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "demo [action...]",
		Short: "Drive the demo app on an in-memory host",
		Long: `Mount the demo app on an in-memory host, then run each action
(increment, add, rotate, reverse) as a click followed by one
flush. After each step the host calls made and the resulting
tree are printed.

Examples:
  vcore demo
  vcore demo rotate rotate reverse
  vcore demo --clicks=3 -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := args
			if len(actions) == 0 {
				actions = []string{"increment", "add", "rotate", "reverse"}
			}
			for i := 0; i < clicks; i++ {
				actions = append([]string{"increment"}, actions...)
			}
			return runDemo(cmd.OutOrStdout(), actions, verbose)
		},
	}

	cmd.Flags().IntVarP(&clicks, "clicks", "n", 0, "Extra increment clicks before the actions")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every host call")
	return cmd
}

// demo is the demo app mounted on a memory host.
type demo struct {
	host      *memory.Host
	queue     *scheduler.Queue
	container *memory.Node
	logs      strings.Builder
}

func newDemo() (*demo, error) {
	d := &demo{host: memory.New()}
	logger := logging.NewWriter(&d.logs, logging.Options{NoColor: true})

	d.queue = scheduler.New(scheduler.WithLogger(logger))
	rt := reactive.NewRuntime(reactive.WithLogger(logger))
	r := renderer.New(d.host, rt, d.queue, renderer.WithLogger(logger))

	d.container = d.host.Container("app")
	if _, err := r.CreateApp(demoApp(), vdom.Props{"title": "vcore demo"}).MountTo(d.container); err != nil {
		return nil, err
	}
	return d, nil
}

// click dispatches a click on #id and flushes the queue.
func (d *demo) click(id string) error {
	node := d.host.Query("#" + id)
	if node == nil {
		return fmt.Errorf("no element #%s", id)
	}
	d.host.ResetOps()
	if err := d.host.Dispatch(node, "click", nil); err != nil {
		return err
	}
	d.queue.Flush()
	return nil
}

// summary counts the host calls recorded since the last reset.
func (d *demo) summary() string {
	kinds := []memory.OpKind{
		memory.OpCreate, memory.OpInsert, memory.OpMove, memory.OpRemove,
		memory.OpSetText, memory.OpSetElementText, memory.OpSetAttr, memory.OpRemoveAttr,
	}
	var parts []string
	for _, k := range kinds {
		if n := d.host.Count(k); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	if len(parts) == 0 {
		return "no host calls"
	}
	return strings.Join(parts, ", ")
}

func runDemo(out io.Writer, actions []string, verbose bool) error {
	d, err := newDemo()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "mount: %s\n  %s\n", d.summary(), memory.HTML(d.container))

	for _, action := range actions {
		if err := d.click(action); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", action, d.summary())
		if verbose {
			for _, op := range d.host.Ops() {
				fmt.Fprintf(out, "    %s\n", op)
			}
		}
		fmt.Fprintf(out, "  %s\n", memory.HTML(d.container))
	}

	if d.logs.Len() > 0 {
		slog.Warn("diagnostics during demo", "log", d.logs.String())
	}
	return nil
}
