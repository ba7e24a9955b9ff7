package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ytfinder/internal/domain"
)

type PrometheusMetrics struct {
	upstreamFetches *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	serves          *prometheus.CounterVec
	cacheAge        prometheus.Gauge
	cacheSize       prometheus.Gauge
	toolDuration    *prometheus.HistogramVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		upstreamFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ytfinder_upstream_fetches_total",
				Help: "Total number of upstream index fetches",
			},
			[]string{"path", "result"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ytfinder_upstream_fetch_duration_seconds",
				Help:    "Duration of upstream index fetches in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"path"},
		),
		serves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ytfinder_cache_serves_total",
				Help: "Total number of snapshots served by freshness band",
			},
			[]string{"freshness"},
		),
		cacheAge: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ytfinder_cache_age_seconds",
				Help: "Age of the cached index at last read",
			},
		),
		cacheSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ytfinder_cache_size",
				Help: "Number of videos in the cached index",
			},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ytfinder_tool_duration_seconds",
				Help:    "Duration of MCP tool invocations in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"tool", "status"},
		),
	}
}

func (p *PrometheusMetrics) ObserveUpstreamFetch(path domain.FetchPath, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	p.upstreamFetches.WithLabelValues(string(path), result).Inc()
	p.fetchDuration.WithLabelValues(string(path)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveServe(freshness domain.Freshness) {
	p.serves.WithLabelValues(string(freshness)).Inc()
}

func (p *PrometheusMetrics) SetCacheAge(age time.Duration) {
	p.cacheAge.Set(age.Seconds())
}

func (p *PrometheusMetrics) SetCacheSize(size int) {
	p.cacheSize.Set(float64(size))
}

func (p *PrometheusMetrics) ObserveToolCall(tool string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.toolDuration.WithLabelValues(tool, status).Observe(duration.Seconds())
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
