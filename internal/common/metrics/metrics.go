package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricsPrefix = "tracetool_"

// Metrics collected during one command run. They are not served; at the end of a run they can be
// written to a file in the text exposition format for the node exporter textfile collector.
type Metrics struct {
	registry          *prometheus.Registry
	recordsRead       *prometheus.CounterVec
	recordsSkipped    *prometheus.CounterVec
	groupsExcluded    *prometheus.CounterVec
	rowsWritten       *prometheus.CounterVec
	commandDuration   *prometheus.HistogramVec
	diagnosticsLogged prometheus.Counter
}

var m = New()

func Get() *Metrics {
	return m
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		recordsRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricsPrefix + "records_read",
				Help: "Number of rows read from the event store",
			},
			[]string{"source"},
		),
		recordsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricsPrefix + "records_skipped",
				Help: "Number of malformed records skipped",
			},
			[]string{"command"},
		),
		groupsExcluded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricsPrefix + "groups_excluded",
				Help: "Number of groups excluded from results",
			},
			[]string{"command", "reason"},
		),
		rowsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricsPrefix + "rows_written",
				Help: "Number of rows committed to the event store",
			},
			[]string{"table"},
		),
		commandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricsPrefix + "command_duration_seconds",
				Help:    "Wall clock time taken by a command",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"command"},
		),
		diagnosticsLogged: factory.NewCounter(
			prometheus.CounterOpts{
				Name: MetricsPrefix + "diagnostics",
				Help: "Number of diagnostics reported",
			},
		),
	}
}

// Registry exposes the registry so other collectors, such as the log line counter, can be added to it.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordRead(source string, n int) {
	m.recordsRead.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) RecordSkipped(command string, n int) {
	m.recordsSkipped.WithLabelValues(command).Add(float64(n))
	m.diagnosticsLogged.Add(float64(n))
}

func (m *Metrics) RecordExcluded(command string, reason string) {
	m.groupsExcluded.WithLabelValues(command, reason).Inc()
	m.diagnosticsLogged.Inc()
}

func (m *Metrics) RecordWritten(table string, n int) {
	m.rowsWritten.WithLabelValues(table).Add(float64(n))
}

func (m *Metrics) RecordCommandDuration(command string, d time.Duration) {
	m.commandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// WriteToTextfile writes all metrics to path atomically.
func (m *Metrics) WriteToTextfile(path string) error {
	return errors.WithStack(prometheus.WriteToTextfile(path, m.registry))
}
