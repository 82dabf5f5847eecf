// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ranking Metrics
	RankRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemamaya_rank_requests_total",
			Help: "Total number of ranking requests by outcome",
		},
		[]string{"outcome"}, // "ranked", "empty", "unavailable", "invalid"
	)

	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinemamaya_rank_duration_seconds",
			Help:    "Duration of ranking requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RankCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinemamaya_rank_candidates",
			Help:    "Number of unseen catalog items scored per request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
		},
	)

	RankEmptyResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemamaya_rank_empty_total",
			Help: "Total number of empty rankings by reason",
		},
		[]string{"reason"}, // "no_history", "no_genre_signal", "no_candidates"
	)

	// Vector Space Metrics
	VectorSpaceLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemamaya_vector_space_lookups_total",
			Help: "Vector space resolutions by source",
		},
		[]string{"source"}, // "built", "memory", "snapshot"
	)

	VectorSpaceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinemamaya_vector_space_duration_seconds",
			Help:    "Time to resolve a vector space by source",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	VectorSpaceEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinemamaya_vector_space_evictions_total",
			Help: "Vector spaces evicted from the in-memory cache",
		},
	)

	// Signal Store Metrics
	SignalFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinemamaya_signal_fetch_duration_seconds",
			Help:    "Duration of signal feed reads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"feed"},
	)

	SignalFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemamaya_signal_fetch_errors_total",
			Help: "Total number of failed signal feed reads",
		},
		[]string{"feed"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently in flight",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordSignalFetch records one feed read
func RecordSignalFetch(feed string, duration time.Duration, err error) {
	SignalFetchDuration.WithLabelValues(feed).Observe(duration.Seconds())
	if err != nil {
		SignalFetchErrors.WithLabelValues(feed).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RankObserver forwards ranking telemetry to the collectors above.
// It satisfies recommend.Observer.
type RankObserver struct{}

// ObserveRank records one ranking call.
func (RankObserver) ObserveRank(outcome string, elapsed time.Duration, candidates int, emptyReason string) {
	RankRequests.WithLabelValues(outcome).Inc()
	RankDuration.Observe(elapsed.Seconds())
	if candidates > 0 {
		RankCandidates.Observe(float64(candidates))
	}
	if emptyReason != "" {
		RankEmptyResults.WithLabelValues(emptyReason).Inc()
	}
}

// ObserveSpace records how a vector space was resolved.
func (RankObserver) ObserveSpace(source string, elapsed time.Duration) {
	VectorSpaceLookups.WithLabelValues(source).Inc()
	VectorSpaceDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}
