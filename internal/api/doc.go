// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

/*
Package api exposes the ranking engine over HTTP.

Routes:

	GET /api/v1/users/{userID}/recommendations?limit=N
	GET /api/v1/users/{userID}/taste-profile
	GET /api/v1/users/{userID}/friends/trending?limit=N
	GET /api/v1/health
	GET /metrics

Every /api/v1 response uses the same envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-01-02T15:04:05Z", "query_time_ms": 12}
	}

Errors set status to "error" and fill the error object:

	{
	  "status": "error",
	  "data": null,
	  "error": {"code": "DATA_UNAVAILABLE", "message": "Signal data is temporarily unavailable"},
	  "metadata": {"timestamp": "2026-01-02T15:04:05Z"}
	}

Engine errors map to status codes in respondEngineError: invalid requests are
400 VALIDATION_ERROR, unavailable signal feeds are 503 DATA_UNAVAILABLE and
anything else is 500 INTERNAL_ERROR. An empty ranking is a 200 whose
metadata.empty_reason explains why no items were returned.

Middleware order, outermost first: request ID, real IP, access log, panic
recovery, CORS and Prometheus metrics, then per-IP rate limiting and gzip on
the /api/v1 group. /metrics is not rate limited.
*/
package api
