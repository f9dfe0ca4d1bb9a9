// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for discovery passes.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Pass metrics
	PassesTotal  *prometheus.CounterVec
	PassDuration prometheus.Histogram
	PassErrors   *prometheus.CounterVec

	// Core metrics
	MarketsIncluded *prometheus.GaugeVec
	MarketsExcluded *prometheus.GaugeVec
	RoutesBuilt     prometheus.Gauge
	PathsByHops     *prometheus.GaugeVec

	// Source metrics
	SourceFetchDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulPass prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered against reg.
// A nil reg uses a fresh private registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "solana_arb_lab"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		PassesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "passes_total",
			Help:      "Total number of discovery passes by status",
		}, []string{"status"}),
		PassDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "pass_duration_seconds",
			Help:      "Discovery pass duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PassErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "errors_total",
			Help:      "Total number of discovery errors by kind",
		}, []string{"kind"}),

		MarketsIncluded: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "markets_included",
			Help:      "Markets passing the liquidity policy in the last pass, by venue",
		}, []string{"dex"}),
		MarketsExcluded: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "markets_excluded",
			Help:      "Markets rejected by the liquidity policy in the last pass, by venue",
		}, []string{"dex"}),
		RoutesBuilt: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "routes",
			Help:      "Directed routes built in the last pass",
		}),
		PathsByHops: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "paths",
			Help:      "Swap paths found in the last pass, by hop count",
		}, []string{"hops"}),

		SourceFetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "markets",
			Name:      "source_fetch_duration_seconds",
			Help:      "Venue source fetch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),

		LastSuccessfulPass: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pass_timestamp",
			Help:      "Unix timestamp of last successful discovery pass",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint of m.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordPass records a finished discovery pass.
func (m *Metrics) RecordPass(status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.PassesTotal.WithLabelValues(status).Inc()
	m.PassDuration.Observe(durationSeconds)
}

// RecordError increments the error counter for kind.
func (m *Metrics) RecordError(kind string) {
	if m == nil {
		return
	}
	m.PassErrors.WithLabelValues(kind).Inc()
}

// RecordSourceFetch records the duration of one venue source fetch.
func (m *Metrics) RecordSourceFetch(source string, seconds float64) {
	if m == nil {
		return
	}
	m.SourceFetchDuration.WithLabelValues(source).Observe(seconds)
}

// SetMarkets sets the per-venue included and excluded gauges.
func (m *Metrics) SetMarkets(dex string, included, excluded int) {
	if m == nil {
		return
	}
	m.MarketsIncluded.WithLabelValues(dex).Set(float64(included))
	m.MarketsExcluded.WithLabelValues(dex).Set(float64(excluded))
}

// ResetMarkets drops the per-venue market gauges so venues absent from the next pass disappear.
func (m *Metrics) ResetMarkets() {
	if m == nil {
		return
	}
	m.MarketsIncluded.Reset()
	m.MarketsExcluded.Reset()
}

// SetRoutes sets the routes gauge.
func (m *Metrics) SetRoutes(n int) {
	if m == nil {
		return
	}
	m.RoutesBuilt.Set(float64(n))
}

// SetPaths sets the path gauge for a hop count.
func (m *Metrics) SetPaths(hops string, n int) {
	if m == nil {
		return
	}
	m.PathsByHops.WithLabelValues(hops).Set(float64(n))
}

// MarkSuccess records the Unix time of a successful pass.
func (m *Metrics) MarkSuccess(unixSeconds int64) {
	if m == nil {
		return
	}
	m.LastSuccessfulPass.Set(float64(unixSeconds))
}

// NewServeMux returns a mux serving /health and /metrics.
func NewServeMux(m *Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", m.Handler())

	return mux
}
