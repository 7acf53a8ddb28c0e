// Package metrics exposes Prometheus collectors for the newsdesk service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	articlesIngestedTotal      *prometheus.CounterVec
	ingestRunsTotal            *prometheus.CounterVec
	ingestQueueDepth           prometheus.Gauge
	visitsTrackedTotal         *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsdesk_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newsdesk_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		articlesIngestedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsdesk_articles_ingested_total",
				Help: "Total number of articles persisted by the ingestion pipeline, labeled by category.",
			},
			[]string{"category"},
		)

		ingestRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsdesk_ingest_runs_total",
				Help: "Total number of per-category ingestion runs, labeled by outcome.",
			},
			[]string{"status"},
		)

		ingestQueueDepth = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "newsdesk_ingest_queue_depth",
				Help: "Number of ingestion trigger jobs waiting in the queue.",
			},
		)

		visitsTrackedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsdesk_visits_tracked_total",
				Help: "Total number of tracked page visits, labeled by new vs repeat session.",
			},
			[]string{"kind"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveIngest records the outcome of one per-category ingestion run.
func ObserveIngest(category, status string, persisted int) {
	Init()
	ingestRunsTotal.WithLabelValues(status).Inc()
	if persisted > 0 {
		articlesIngestedTotal.WithLabelValues(category).Add(float64(persisted))
	}
}

// SetQueueDepth records the current ingestion queue backlog.
func SetQueueDepth(n int) {
	Init()
	ingestQueueDepth.Set(float64(n))
}

// ObserveVisit increments the visit counter for a new or repeat session.
func ObserveVisit(isNew bool) {
	Init()
	kind := "repeat"
	if isNew {
		kind = "new"
	}
	visitsTrackedTotal.WithLabelValues(kind).Inc()
}
