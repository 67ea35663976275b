package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the probe metrics of a run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ProbesTotal   *prometheus.CounterVec
	ProbeDuration prometheus.Histogram
	ErrorsTotal   prometheus.Counter
	LastRunPassed prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ProbesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "urltester_probes_total",
			Help: "Total number of probes by outcome.",
		}, []string{"result"}), // passed, failed
		ProbeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "urltester_probe_duration_seconds",
			Help:    "Duration of a single probe including redirects.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "urltester_errors_total",
			Help: "Total number of error messages raised during a run.",
		}),
		LastRunPassed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "urltester_last_run_passed",
			Help: "1 if every record of the last run passed, 0 otherwise.",
		}),
	}
	m.registry.MustRegister(m.ProbesTotal, m.ProbeDuration, m.ErrorsTotal, m.LastRunPassed)
	return m
}

// ObserveProbe records the outcome and duration of one probe.
func (m *Metrics) ObserveProbe(passed bool, d time.Duration) {
	result := "passed"
	if !passed {
		result = "failed"
	}
	m.ProbesTotal.WithLabelValues(result).Inc()
	m.ProbeDuration.Observe(d.Seconds())
}

// ObserveRun records the overall result and error count of a run.
func (m *Metrics) ObserveRun(passed bool, errors int) {
	if passed {
		m.LastRunPassed.Set(1)
	} else {
		m.LastRunPassed.Set(0)
	}
	m.ErrorsTotal.Add(float64(errors))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the metrics in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
