package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vcore/pkg/scheduler"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vcore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	// Default: prometheus.DefBuckets
	Buckets []float64
}

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	sessionsActive prometheus.Gauge
	sessionsTotal  prometheus.Counter
	eventsTotal    *prometheus.CounterVec
	flushesTotal   prometheus.Counter
	flushDuration  prometheus.Histogram
	jobsTotal      prometheus.Counter
	jobFailures    prometheus.Counter
	opsSent        prometheus.Counter
	bytesSent      prometheus.Counter
	wsErrors       *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer, config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "vcore"
	}
	if len(config.Buckets) == 0 {
		config.Buckets = prometheus.DefBuckets
	}
	factory := promauto.With(reg)

	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sessions_active",
			Help:        "Number of connected sessions",
			ConstLabels: config.ConstLabels,
		}),

		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sessions_total",
			Help:        "Total number of sessions opened",
			ConstLabels: config.ConstLabels,
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of client events by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes",
			ConstLabels: config.ConstLabels,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Scheduler flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		jobsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "jobs_total",
			Help:        "Total number of scheduler jobs run",
			ConstLabels: config.ConstLabels,
		}),

		jobFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "job_failures_total",
			Help:        "Total number of scheduler jobs that panicked or were dropped",
			ConstLabels: config.ConstLabels,
		}),

		opsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_ops_sent_total",
			Help:        "Total number of host ops sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_sent_total",
			Help:        "Total number of frame bytes written to clients",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total number of WebSocket errors by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

func (m *Metrics) sessionOpened() {
	m.sessionsActive.Inc()
	m.sessionsTotal.Inc()
}

func (m *Metrics) sessionClosed() {
	m.sessionsActive.Dec()
}

func (m *Metrics) event(status string) {
	m.eventsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) frameSent(ops, bytes int) {
	m.opsSent.Add(float64(ops))
	m.bytesSent.Add(float64(bytes))
}

func (m *Metrics) wsError(kind string) {
	m.wsErrors.WithLabelValues(kind).Inc()
}

// flushObserver reports scheduler flushes to the collectors.
type flushObserver struct {
	m *Metrics
}

func (o flushObserver) FlushStarted() {}

func (o flushObserver) FlushFinished(stats scheduler.FlushStats) {
	o.m.flushesTotal.Inc()
	o.m.flushDuration.Observe(stats.Duration.Seconds())
	o.m.jobsTotal.Add(float64(stats.Jobs))
}

func (o flushObserver) JobFailed(*scheduler.Job, error) {
	o.m.jobFailures.Inc()
}

// observers fans scheduler notifications out to several observers.
type observers []scheduler.Observer

func (os observers) FlushStarted() {
	for _, o := range os {
		o.FlushStarted()
	}
}

func (os observers) FlushFinished(stats scheduler.FlushStats) {
	for _, o := range os {
		o.FlushFinished(stats)
	}
}

func (os observers) JobFailed(job *scheduler.Job, err error) {
	for _, o := range os {
		o.JobFailed(job, err)
	}
}
