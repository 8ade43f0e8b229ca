package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vcore/internal/config"
	"github.com/vango-dev/vcore/pkg/protocol"
)

type benchConfig struct {
	Clients      int
	Duration     time.Duration
	RPS          float64
	Action       string
	EventTimeout time.Duration
	JSONOutput   string
}

type benchCounters struct {
	eventsSent     atomic.Uint64
	eventsComplete atomic.Uint64
	frameBytes     atomic.Uint64
	opsFrames      atomic.Uint64
	handshakeFails atomic.Uint64
	errorFrames    atomic.Uint64
	timeouts       atomic.Uint64
	ops            [256]atomic.Uint64
}

func (c *benchCounters) opCounts() map[string]uint64 {
	out := make(map[string]uint64)
	for i := range c.ops {
		if n := c.ops[i].Load(); n > 0 {
			out[protocol.OpCode(i).String()] = n
		}
	}
	return out
}

type benchReport struct {
	Clients    int                `json:"clients"`
	Duration   string             `json:"duration"`
	Action     string             `json:"action"`
	Events     uint64             `json:"events"`
	Completed  uint64             `json:"completed"`
	EventsPerS float64            `json:"events_per_second"`
	LatencyMS  map[string]float64 `json:"latency_ms"`
	FrameBytes uint64             `json:"frame_bytes"`
	OpsFrames  uint64             `json:"ops_frames"`
	Ops        map[string]uint64  `json:"ops"`
	Errors     map[string]uint64  `json:"errors"`
}

func benchCmd(flags *globalFlags) *cobra.Command {
	bc := benchConfig{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Load test an in-process server",
		Long: `Start the server in-process and drive it with WebSocket clients.
Each client clicks one button of the demo app at a fixed rate and
waits for the resulting Ops frame; the round trip is recorded.

Examples:
  vcore bench
  vcore bench --clients=200 --duration=30s --rps=5
  vcore bench --action=rotate --json=bench.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if bc.Clients <= 0 || bc.RPS <= 0 || bc.Duration <= 0 {
				return errors.New("--clients, --rps and --duration must be positive")
			}
			if bc.EventTimeout <= 0 {
				bc.EventTimeout = 5 * time.Second
			}
			cfg.Log.Level = "warn"
			cfg.Server.EventRate = 0
			return runBench(cmd.Context(), cmd.OutOrStdout(), cfg, bc)
		},
	}

	f := cmd.Flags()
	f.IntVar(&bc.Clients, "clients", 50, "Concurrent WebSocket clients")
	f.DurationVar(&bc.Duration, "duration", 10*time.Second, "Test duration")
	f.Float64Var(&bc.RPS, "rps", 2, "Clicks per second per client")
	f.StringVar(&bc.Action, "action", "increment", "Button to click: increment, add, rotate, reverse")
	f.DurationVar(&bc.EventTimeout, "event-timeout", 5*time.Second, "Maximum wait for the patch of one click")
	f.StringVar(&bc.JSONOutput, "json", "", "Also write the report as JSON to this path")
	return cmd
}

func runBench(ctx context.Context, out io.Writer, cfg *config.Config, bc benchConfig) error {
	srv := newServer(cfg, "bench")
	defer srv.Close()

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	httpServer := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = httpServer.Serve(ln) }()
	defer func() { _ = httpServer.Shutdown(context.Background()) }()

	wsURL := "ws://" + ln.Addr().String() + cfg.Server.WebSocketPath

	ctx, cancel := context.WithTimeout(ctx, bc.Duration)
	defer cancel()

	var (
		counters  benchCounters
		samplesMu sync.Mutex
		samples   []time.Duration
		wg        sync.WaitGroup
	)
	start := time.Now()
	for i := 0; i < bc.Clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rtts, err := runClient(ctx, wsURL, bc, &counters)
			if err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "client %d: %v\n", id, err)
			}
			samplesMu.Lock()
			samples = append(samples, rtts...)
			samplesMu.Unlock()
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	report := buildReport(bc, elapsed, samples, &counters)
	writeSummary(out, report)
	if bc.JSONOutput != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(bc.JSONOutput, append(data, '\n'), 0644); err != nil {
			return err
		}
		success("wrote %s", bc.JSONOutput)
	}
	return nil
}

// runClient connects, finds the action button and clicks it at the
// configured rate until ctx is done. It returns the round trips observed.
func runClient(ctx context.Context, wsURL string, bc benchConfig, counters *benchCounters) ([]time.Duration, error) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		counters.handshakeFails.Add(1)
		return nil, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	button, err := handshake(conn, bc.Action, counters)
	if err != nil {
		counters.handshakeFails.Add(1)
		return nil, err
	}

	period := time.Duration(float64(time.Second) / bc.RPS)
	var (
		seq  uint64
		rtts []time.Duration
	)
	for {
		select {
		case <-ctx.Done():
			return rtts, nil
		default:
		}

		seq++
		sent := time.Now()
		frame := protocol.NewFrame(protocol.FrameEvent, protocol.EncodeEvent(&protocol.Event{
			Seq: seq, Node: button, Name: "click",
		})).Encode()
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return rtts, fmt.Errorf("event write: %w", err)
		}
		counters.eventsSent.Add(1)

		_ = conn.SetReadDeadline(time.Now().Add(bc.EventTimeout))
		if _, err := readOps(conn, counters); err != nil {
			if isTimeout(err) {
				counters.timeouts.Add(1)
			}
			return rtts, err
		}
		rtts = append(rtts, time.Since(sent))
		counters.eventsComplete.Add(1)

		if sleep := period - time.Since(sent); sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return rtts, nil
			case <-timer.C:
			}
		}
	}
}

// handshake reads the hello and mount frames and returns the node id of
// the button whose id attribute is action.
func handshake(conn *websocket.Conn, action string, counters *benchCounters) (uint32, error) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return 0, fmt.Errorf("hello read: %w", err)
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil || frame.Type != protocol.FrameHello {
		return 0, fmt.Errorf("expected hello frame (err %v)", err)
	}

	mount, err := readOps(conn, counters)
	if err != nil {
		return 0, fmt.Errorf("mount: %w", err)
	}
	for _, op := range mount.Ops {
		if op.Code == protocol.OpSetAttr && op.Key == "id" && op.Value == action {
			return op.Node, nil
		}
	}
	return 0, fmt.Errorf("no element with id %q in the mount ops", action)
}

// readOps reads frames until an Ops frame arrives.
func readOps(conn *websocket.Conn, counters *benchCounters) (*protocol.OpsFrame, error) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		counters.frameBytes.Add(uint64(len(msg)))
		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			return nil, fmt.Errorf("frame decode: %w", err)
		}
		switch frame.Type {
		case protocol.FrameOps:
			ops, err := protocol.DecodeOps(frame.Payload)
			if err != nil {
				return nil, fmt.Errorf("ops decode: %w", err)
			}
			counters.opsFrames.Add(1)
			for _, op := range ops.Ops {
				counters.ops[op.Code].Add(1)
			}
			return ops, nil
		case protocol.FrameError:
			counters.errorFrames.Add(1)
			if m, err := protocol.DecodeError(frame.Payload); err == nil && m.Fatal {
				return nil, fmt.Errorf("server error %s: %s", m.Code, m.Message)
			}
		}
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func buildReport(bc benchConfig, elapsed time.Duration, samples []time.Duration, c *benchCounters) benchReport {
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	r := benchReport{
		Clients:    bc.Clients,
		Duration:   elapsed.Round(time.Millisecond).String(),
		Action:     bc.Action,
		Events:     c.eventsSent.Load(),
		Completed:  c.eventsComplete.Load(),
		FrameBytes: c.frameBytes.Load(),
		OpsFrames:  c.opsFrames.Load(),
		Ops:        c.opCounts(),
		LatencyMS: map[string]float64{
			"p50": ms(percentile(samples, 0.50)),
			"p95": ms(percentile(samples, 0.95)),
			"p99": ms(percentile(samples, 0.99)),
			"max": ms(percentile(samples, 1)),
		},
		Errors: map[string]uint64{
			"handshake": c.handshakeFails.Load(),
			"frames":    c.errorFrames.Load(),
			"timeouts":  c.timeouts.Load(),
		},
	}
	if secs := elapsed.Seconds(); secs > 0 {
		r.EventsPerS = float64(r.Completed) / secs
	}
	return r
}

func writeSummary(w io.Writer, r benchReport) {
	fmt.Fprintf(w, "clients=%d duration=%s action=%s\n", r.Clients, r.Duration, r.Action)
	fmt.Fprintf(w, "events: %d sent, %d completed (%.1f/s)\n", r.Events, r.Completed, r.EventsPerS)
	fmt.Fprintf(w, "latency ms: p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		r.LatencyMS["p50"], r.LatencyMS["p95"], r.LatencyMS["p99"], r.LatencyMS["max"])
	fmt.Fprintf(w, "frames: %d ops frames, %d bytes\n", r.OpsFrames, r.FrameBytes)

	names := make([]string, 0, len(r.Ops))
	for name := range r.Ops {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %d\n", name, r.Ops[name])
	}
	fmt.Fprintf(w, "errors: handshake=%d error_frames=%d timeouts=%d\n",
		r.Errors["handshake"], r.Errors["frames"], r.Errors["timeouts"])
}
