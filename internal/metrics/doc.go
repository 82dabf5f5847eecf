// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

/*
Package metrics provides Prometheus instrumentation for Cinemamaya.

All collectors are registered on the default registry through promauto and
exposed on /metrics by the API router.

# Metric Families

  - cinemamaya_rank_*: ranking outcomes, latency, candidate counts and empty
    results by reason
  - cinemamaya_vector_space_*: where vector spaces came from and fit time
  - cinemamaya_signal_fetch_*: per-feed store latency and errors
  - duckdb_query_*: DuckDB query latency and errors
  - circuit_breaker_*: signal store breaker state and outcomes
  - api_*: HTTP request counts, latency and in-flight requests

# Usage

	engine, _ := recommend.NewEngine(store, cfg, logger,
	    recommend.WithObserver(metrics.RankObserver{}))

	metrics.RecordAPIRequest("GET", "/api/v1/users/{userID}/recommendations", "200", elapsed)
*/
package metrics
