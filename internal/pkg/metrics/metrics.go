// Package metrics exposes the service's Prometheus collectors.
//
// A nil *Metrics is valid and records nothing, so callers that run without
// a registry (CLI commands, tests) can pass nil.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls the /metrics endpoint.
type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DefaultConfig returns metrics enabled on /metrics.
func DefaultConfig() *Config {
	return &Config{Enabled: true, Path: "/metrics"}
}

// Metrics holds the report and site usage collectors.
type Metrics struct {
	registry *prometheus.Registry

	reportDuration *prometheus.HistogramVec
	reportTotal    *prometheus.CounterVec
	contextsSeen   prometheus.Counter
	siteUsageBytes prometheus.Gauge
	siteUsageAge   prometheus.Gauge
	scansTotal     *prometheus.CounterVec
}

// New registers all collectors on a fresh registry. Returns nil when
// metrics are disabled.
func New(cfg *Config) *Metrics {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Metrics{
		registry: reg,
		reportDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "coursesize_report_duration_seconds",
				Help: "Time taken to build a course size report",
				Buckets: []float64{
					0.05, // small sites
					0.25,
					1,
					5,
					15,
					60, // very large file tables
				},
			},
			[]string{"scope"}, // "site", "category"
		),
		reportTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursesize_reports_total",
				Help: "Total number of course size reports by outcome",
			},
			[]string{"outcome"}, // "ok", "error"
		),
		contextsSeen: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "coursesize_contexts_aggregated_total",
				Help: "Total number of contexts streamed through the aggregator",
			},
		),
		siteUsageBytes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "coursesize_site_usage_bytes",
				Help: "Last recorded total size of the site data directory",
			},
		),
		siteUsageAge: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "coursesize_site_usage_recorded_timestamp_seconds",
				Help: "Unix time at which the site usage figure was measured",
			},
		),
		scansTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursesize_site_usage_scans_total",
				Help: "Total number of site usage scans by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveReport records one report build.
func (m *Metrics) ObserveReport(scope string, d time.Duration, contexts int, err error) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(scope).Observe(d.Seconds())
	m.reportTotal.WithLabelValues(outcome(err)).Inc()
	m.contextsSeen.Add(float64(contexts))
}

// SetSiteUsage publishes the cached site usage figure.
func (m *Metrics) SetSiteUsage(bytes int64, recorded time.Time) {
	if m == nil {
		return
	}
	m.siteUsageBytes.Set(float64(bytes))
	m.siteUsageAge.Set(float64(recorded.Unix()))
}

// ObserveScan records one directory scan.
func (m *Metrics) ObserveScan(err error) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
