// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

/*
Package middleware provides HTTP middleware for the ranking API.

Every component has the chi signature func(http.Handler) http.Handler and can
be passed straight to chi.Router.Use.

Key Components:

  - RequestID: preserves or generates X-Request-ID and stores it, with a
    request-scoped zerolog logger, in the request context
  - AccessLog: one structured log line per request
  - PrometheusMetrics: request count, latency and in-flight gauge labeled by
    chi route pattern
  - Compression: pooled gzip writers for clients that accept it

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

RequestID must run first so later layers log with the request identifier.
PrometheusMetrics reads the route pattern after the handler returns, which is
when chi has finished matching nested routers.
*/
package middleware
