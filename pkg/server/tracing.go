package server

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vcore/pkg/scheduler"
)

// TracerName is the instrumentation name used when no tracer is configured.
const TracerName = "github.com/vango-dev/vcore/pkg/server"

// flushTracer wraps every scheduler flush of one session in a span.
type flushTracer struct {
	tracer  trace.Tracer
	session string
	span    trace.Span
}

func (t *flushTracer) FlushStarted() {
	_, t.span = t.tracer.Start(context.Background(), "vcore.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("vcore.session", t.session)),
	)
}

func (t *flushTracer) FlushFinished(stats scheduler.FlushStats) {
	if t.span == nil {
		return
	}
	t.span.SetAttributes(
		attribute.Int("vcore.flush.jobs", stats.Jobs),
		attribute.Int("vcore.flush.failed", stats.Failed),
	)
	if stats.Failed > 0 {
		t.span.SetStatus(codes.Error, fmt.Sprintf("%d jobs failed", stats.Failed))
	}
	t.span.End()
	t.span = nil
}

func (t *flushTracer) JobFailed(job *scheduler.Job, err error) {
	if t.span == nil {
		return
	}
	t.span.RecordError(err, trace.WithAttributes(attribute.String("vcore.job", job.String())))
}
