// Package metrics holds the Prometheus collectors for the shot tracker.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stuartshay/shot-tracker/internal/position"
	"github.com/stuartshay/shot-tracker/internal/queue"
)

const namespace = "shot_tracker"

// Metrics holds the Prometheus counters and histograms for the service.
type Metrics struct {
	ShotsRecorded     *prometheus.CounterVec   // labels: source={explicit,device}
	PositionRequests  *prometheus.CounterVec   // labels: outcome={success,permission_denied,unavailable,timeout,canceled}
	AnalyticsDuration *prometheus.HistogramVec // labels: operation
	ReportJobs        *prometheus.CounterVec   // labels: status
}

func newCollectors() *Metrics {
	return &Metrics{
		ShotsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shots_recorded_total",
			Help:      "Shots recorded by coordinate source.",
		}, []string{"source"}),
		PositionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "position_requests_total",
			Help:      "Device position requests by outcome.",
		}, []string{"outcome"}),
		AnalyticsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analytics_duration_seconds",
			Help:      "Duration of analytics computations by operation.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		ReportJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_jobs_total",
			Help:      "Round report job transitions by status.",
		}, []string{"status"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newCollectors()

	prometheus.MustRegister(
		m.ShotsRecorded,
		m.PositionRequests,
		m.AnalyticsDuration,
		m.ReportJobs,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newCollectors()
}

// ObservePosition counts a position request by the kind of its error
func (m *Metrics) ObservePosition(err error) {
	m.PositionRequests.WithLabelValues(positionOutcome(err)).Inc()
}

// ObserveJob counts a report job status transition. It satisfies queue.StatusHook.
func (m *Metrics) ObserveJob(status queue.JobStatus) {
	m.ReportJobs.WithLabelValues(string(status)).Inc()
}

// ObserveAnalytics records how long an analytics operation took since start
func (m *Metrics) ObserveAnalytics(operation string, start time.Time) {
	m.AnalyticsDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func positionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, position.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, position.ErrTimeout):
		return "timeout"
	case errors.Is(err, position.ErrPositionUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unavailable"
	}
}

var queueStatuses = []queue.JobStatus{
	queue.StatusQueued,
	queue.StatusProcessing,
	queue.StatusCompleted,
	queue.StatusFailed,
}

// QueueCollector reports how many report jobs the queue holds in each
// status, read from stats at scrape time.
type QueueCollector struct {
	stats func() map[string]int
	desc  *prometheus.Desc
}

// NewQueueCollector creates a collector over a queue stats snapshot function
// such as queue.Queue.GetStats.
func NewQueueCollector(stats func() map[string]int) *QueueCollector {
	return &QueueCollector{
		stats: stats,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "report_queue_jobs"),
			"Round report jobs held by the queue by status.",
			[]string{"status"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *QueueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector
func (c *QueueCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.stats()
	for _, status := range queueStatuses {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(stats[string(status)]), string(status))
	}
}
