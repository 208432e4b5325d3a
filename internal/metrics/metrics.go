// Package metrics holds the Prometheus instrumentation of the discovery
// engine and its API. Collectors register on the default registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine Metrics
	FiltersApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_filters_applied_total",
			Help: "Total number of filters applied, by filter id",
		},
		[]string{"filter"},
	)

	FilterContradictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_filter_contradictions_total",
			Help: "Total number of filters cancelled by an opposite nudge",
		},
	)

	FilterRelaxations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_filter_relaxations_total",
			Help: "Total number of rebuild steps recomputed at a relaxed radius",
		},
		[]string{"filter"},
	)

	RebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vibe_rebuild_duration_seconds",
			Help:    "Duration of playback pool rebuilds in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	PlaybackPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vibe_playback_pool_size",
			Help:    "Size of the playback pool after a rebuild",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		},
	)

	Expansions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_expansions_total",
			Help: "Total number of cross-genre expansions, by outcome",
		},
		[]string{"outcome"}, // "expanded", "no_candidates"
	)

	GenrePoolFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_genre_pool_fallbacks_total",
			Help: "Total number of rebuilds that fell back to the genre pool",
		},
	)

	ItemsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_items_served_total",
			Help: "Total number of items served, by strategy and pick path",
		},
		[]string{"strategy", "path"}, // path: "envelope", "decile", "random"
	)

	ShownResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_shown_resets_total",
			Help: "Total number of shown-set resets on pool exhaustion",
		},
	)

	// Session Metrics
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vibe_active_sessions",
			Help: "Current number of sessions held in memory",
		},
	)

	SessionStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_session_store_errors_total",
			Help: "Total number of session store failures",
		},
		[]string{"operation"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vibe_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordFilterApplied records a filter application; cancelled marks a
// contradiction.
func RecordFilterApplied(filter string, cancelled bool) {
	FiltersApplied.WithLabelValues(filter).Inc()
	if cancelled {
		FilterContradictions.Inc()
	}
}

// RecordRebuild records a rebuild's duration and resulting pool size.
func RecordRebuild(duration time.Duration, poolSize int) {
	RebuildDuration.Observe(duration.Seconds())
	PlaybackPoolSize.Observe(float64(poolSize))
}

// RecordRelaxation records a relaxed rebuild step.
func RecordRelaxation(filter string) {
	FilterRelaxations.WithLabelValues(filter).Inc()
}

// RecordExpansion records a cross-genre expansion attempt.
func RecordExpansion(added int) {
	if added > 0 {
		Expansions.WithLabelValues("expanded").Inc()
		return
	}
	Expansions.WithLabelValues("no_candidates").Inc()
}

// RecordFallback records a rebuild that reverted to the genre pool.
func RecordFallback() {
	GenrePoolFallbacks.Inc()
}

// RecordItemServed records a served item.
func RecordItemServed(strategy, path string, reset bool) {
	ItemsServed.WithLabelValues(strategy, path).Inc()
	if reset {
		ShownResets.Inc()
	}
}

// RecordStoreError records a failed session store operation.
func RecordStoreError(operation string) {
	SessionStoreErrors.WithLabelValues(operation).Inc()
}

// SetActiveSessions sets the live session gauge.
func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
