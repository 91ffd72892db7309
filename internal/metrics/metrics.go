// Package metrics exposes Prometheus collectors for the HTTP server and
// the scrape pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobscout"

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	scrapes        *prometheus.CounterVec
	scrapeDuration *prometheus.HistogramVec
	postings       prometheus.Histogram
	cacheHits      prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"path", "method", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"path", "method"}),
		scrapes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrapes_total",
			Help:      "Browser scrapes by outcome.",
		}, []string{"outcome"}),
		scrapeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Wall time of a browser scrape.",
			Buckets:   []float64{1, 5, 10, 20, 40, 60, 90, 120, 180, 300},
		}, []string{"outcome"}),
		postings: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_postings",
			Help:      "Postings collected per scrape.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_cache_hits_total",
			Help:      "Scrapes answered from the result cache.",
		}),
	}
}

// ScrapeFinished implements jobs.Recorder.
func (m *Metrics) ScrapeFinished(outcome string, elapsed time.Duration, postings int) {
	m.scrapes.WithLabelValues(outcome).Inc()
	m.scrapeDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	m.postings.Observe(float64(postings))
}

// CacheHit implements jobs.Recorder.
func (m *Metrics) CacheHit() {
	m.cacheHits.Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(path, method string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
