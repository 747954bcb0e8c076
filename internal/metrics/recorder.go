package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dkoosis/hellobench/pkg/bench"
)

const namespace = "hellobench"

// Recorder collects benchmark events into its own Prometheus registry.
// It satisfies bench.Observer.
type Recorder struct {
	registry *prometheus.Registry

	Iterations        *prometheus.CounterVec
	IterationDuration *prometheus.HistogramVec
	Results           *prometheus.CounterVec
	ExecutionTime     *prometheus.GaugeVec
	MemoryUsage       *prometheus.GaugeVec
	OpsPerSecond      *prometheus.GaugeVec
	SuccessRate       *prometheus.GaugeVec
}

var _ bench.Observer = (*Recorder)(nil)

// NewRecorder creates and registers all benchmark metrics.
func NewRecorder() *Recorder {
	m := &Recorder{registry: prometheus.NewRegistry()}

	m.Iterations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Benchmark iterations by outcome.",
		},
		[]string{"benchmark", "status"},
	)

	m.IterationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "iteration_duration_seconds",
			Help:      "Duration of successful benchmark iterations.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 10, 9),
		},
		[]string{"benchmark"},
	)

	m.Results = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Recorded benchmark results by outcome.",
		},
		[]string{"outcome"},
	)

	m.ExecutionTime = newResultGauge("execution_seconds", "Average execution time per benchmark.")
	m.MemoryUsage = newResultGauge("memory_megabytes", "Average memory usage per benchmark, when measured.")
	m.OpsPerSecond = newResultGauge("operations_per_second", "Throughput per benchmark.")
	m.SuccessRate = newResultGauge("success_ratio", "Fraction of successful iterations per benchmark.")

	m.registry.MustRegister(
		m.Iterations,
		m.IterationDuration,
		m.Results,
		m.ExecutionTime,
		m.MemoryUsage,
		m.OpsPerSecond,
		m.SuccessRate,
	)
	return m
}

func newResultGauge(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "result",
			Name:      name,
			Help:      help,
		},
		[]string{"benchmark"},
	)
}

// ObserveIteration counts one iteration and records its duration on success.
func (m *Recorder) ObserveIteration(name string, elapsed time.Duration, err error) {
	if err != nil {
		m.Iterations.WithLabelValues(name, "error").Inc()
		return
	}
	m.Iterations.WithLabelValues(name, "ok").Inc()
	m.IterationDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ObserveResult exports the aggregate of one benchmark.
func (m *Recorder) ObserveResult(r bench.Result) {
	m.Results.WithLabelValues(string(r.Outcome)).Inc()
	m.ExecutionTime.WithLabelValues(r.Name).Set(r.ExecutionTime)
	m.OpsPerSecond.WithLabelValues(r.Name).Set(r.OperationsPerSecond)
	m.SuccessRate.WithLabelValues(r.Name).Set(r.SuccessRate)
	if r.Memory.Measured {
		m.MemoryUsage.WithLabelValues(r.Name).Set(r.Memory.MB)
	}
}

// Gatherer exposes the registry.
func (m *Recorder) Gatherer() prometheus.Gatherer { return m.registry }

// WriteTextfile writes the current metrics in the text exposition format,
// suitable for the node_exporter textfile collector.
func (m *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
