package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/scenaria/pkg/scenario"
)

// Metrics counts scenario and step outcomes and writes them in the
// node_exporter textfile format when the run finishes.
type Metrics struct {
	scenario.BaseObserver

	path     string
	registry *prometheus.Registry
	err      error

	scenarios *prometheus.CounterVec
	steps     *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewMetrics creates a metrics observer. An empty path keeps the metrics
// in memory only.
func NewMetrics(path string) *Metrics {
	m := &Metrics{
		path:     path,
		registry: prometheus.NewRegistry(),
		scenarios: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scenaria_scenarios_total",
				Help: "Total number of finished scenarios by status",
			},
			[]string{"status"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scenaria_steps_total",
				Help: "Total number of finished steps by status",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scenaria_scenario_duration_seconds",
				Help:    "Duration of scenario executions",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
		),
	}
	m.registry.MustRegister(m.scenarios, m.steps, m.duration)
	return m
}

// Registry exposes the collectors, e.g. for a push gateway.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Err returns the error from writing the textfile, if any.
func (m *Metrics) Err() error { return m.err }

func (m *Metrics) StepFinished(n scenario.Node) {
	if _, ok := n.(*scenario.Step); ok {
		m.steps.WithLabelValues(string(n.Status())).Inc()
	}
}

func (m *Metrics) ScenarioFinished(e *scenario.Execution) {
	m.scenarios.WithLabelValues(string(e.Status())).Inc()
	m.duration.Observe(e.Duration().Seconds())
}

func (m *Metrics) Finished(*scenario.World) {
	if m.path == "" {
		return
	}
	m.err = prometheus.WriteToTextfile(m.path, m.registry)
}
