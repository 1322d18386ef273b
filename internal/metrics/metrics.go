// Package metrics provides Prometheus instrumentation for the stats API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventRatings counts event rating lookups by source (cache, computed, failed).
	EventRatings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_event_ratings_total",
		Help: "Event rating lookups by source",
	}, []string{"source"})

	RatingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fsm_rating_compute_duration_seconds",
		Help:    "Duration of a full FSM rating pass over an event",
		Buckets: prometheus.DefBuckets,
	})

	// ShardRefreshes counts global ranking shard refreshes by outcome.
	ShardRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_shard_refreshes_total",
		Help: "Global ranking shard refreshes by outcome",
	}, []string{"outcome"})

	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_provider_requests_total",
		Help: "Requests to the match data provider",
	}, []string{"op", "status"})

	ScoringModelCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_scoring_model_calls_total",
		Help: "Scoring model predictions by outcome",
	}, []string{"outcome"})

	DraftSimulations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_draft_simulations_total",
		Help: "Alliance draft simulations by outcome",
	}, []string{"outcome"})

	SnapshotsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fsm_snapshots_ingested_total",
		Help: "Rating snapshots accepted by the worker queue",
	})

	SnapshotsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fsm_snapshots_processed_total",
		Help: "Rating snapshots written to ClickHouse",
	})

	SnapshotsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fsm_snapshots_failed_total",
		Help: "Rating snapshots that failed to write",
	})

	SnapshotsShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fsm_snapshots_load_shed_total",
		Help: "Rating snapshots dropped because the queue was full",
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fsm_worker_queue_depth",
		Help: "Current depth of the snapshot queue",
	})

	BatchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fsm_batch_insert_duration_seconds",
		Help:    "Duration of snapshot batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fsm_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency, labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
