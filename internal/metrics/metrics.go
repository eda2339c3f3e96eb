// Package metrics holds the Prometheus instruments of the dispatch pipeline
package metrics

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace is the namespace for all metrics
	Namespace = "quill"
	// Subsystem is the subsystem of the dispatch metrics
	Subsystem = "dispatch"
)

// Dispatch outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeInFlight = "in_flight"
	OutcomeError    = "error"
)

// Metrics holds all Prometheus metrics of the service
type Metrics struct {
	DispatchesTotal     *prometheus.CounterVec
	JobsFinishedTotal   *prometheus.CounterVec
	AgentCallDuration   *prometheus.HistogramVec
	JobsInFlight        prometheus.Gauge
	ScanResultsTotal    *prometheus.CounterVec
	ReconciledJobsTotal prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers all metrics on reg. A nil reg uses a
// private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.DispatchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "requests_total",
			Help:      "Total number of dispatch requests by outcome",
		},
		[]string{"outcome"},
	)

	m.JobsFinishedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "jobs_finished_total",
			Help:      "Total number of agent jobs that reached a terminal status",
		},
		[]string{"status"},
	)

	m.AgentCallDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "agent_call_duration_seconds",
			Help:      "Duration of agent run calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
		},
		[]string{"result"},
	)

	m.JobsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "jobs_in_flight",
			Help:      "Number of agent calls currently running in this process",
		},
	)

	m.ScanResultsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "scan_results_total",
			Help:      "Total number of due items handled by scans, by result",
		},
		[]string{"status"},
	)

	m.ReconciledJobsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "reconciled_jobs_total",
			Help:      "Total number of orphaned jobs failed by the reconciler",
		},
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}
