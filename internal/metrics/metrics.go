// Package metrics provides Prometheus metrics for index builds, lint
// findings and link checks.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atelier-vision/zoocard/internal/index"
	"github.com/atelier-vision/zoocard/internal/linkcheck"
)

// Metrics bundles the zoocard Prometheus metrics on a private registry.
type Metrics struct {
	CardsIndexed       prometheus.Gauge
	BenchmarkRows      prometheus.Gauge
	IndexBuildsTotal   prometheus.Counter
	IndexBuildDuration prometheus.Histogram
	LintFindings       *prometheus.GaugeVec
	LinkChecksTotal    *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the metrics and registers them on the given registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,

		CardsIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "zoocard_cards_indexed",
			Help: "Number of model cards in the current index",
		}),
		BenchmarkRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "zoocard_benchmark_rows",
			Help: "Number of benchmark rows in the current index",
		}),
		IndexBuildsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoocard_index_builds_total",
			Help: "Total number of index builds",
		}),
		IndexBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "zoocard_index_build_duration_seconds",
			Help:    "Index build latency",
			Buckets: prometheus.DefBuckets,
		}),
		LintFindings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "zoocard_lint_findings",
			Help: "Lint findings in the current index by severity",
		}, []string{"severity"}),
		LinkChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zoocard_link_checks_total",
			Help: "Artifact link checks by outcome",
		}, []string{"status"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zoocard_http_requests_total",
			Help: "HTTP requests by method, path and status code",
		}, []string{"method", "path", "status"}),
	}

	collectors := []prometheus.Collector{
		m.CardsIndexed,
		m.BenchmarkRows,
		m.IndexBuildsTotal,
		m.IndexBuildDuration,
		m.LintFindings,
		m.LinkChecksTotal,
		m.HTTPRequestsTotal,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return m, nil
}

// ObserveBuild records the outcome of one index build.
func (m *Metrics) ObserveBuild(summary *index.Summary) {
	m.IndexBuildsTotal.Inc()
	m.IndexBuildDuration.Observe(summary.Duration.Seconds())
	m.CardsIndexed.Set(float64(summary.Cards))
	m.BenchmarkRows.Set(float64(summary.Rows))

	m.LintFindings.Reset()
	for severity, count := range summary.Findings {
		m.LintFindings.WithLabelValues(string(severity)).Set(float64(count))
	}
}

// ObserveLinkChecks records link check outcomes.
func (m *Metrics) ObserveLinkChecks(results []linkcheck.Result) {
	for _, r := range results {
		m.LinkChecksTotal.WithLabelValues(string(r.Status)).Inc()
	}
}

// Handler returns the /metrics HTTP handler for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
