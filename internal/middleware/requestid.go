// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package middleware

import (
	"net/http"
	"unicode"

	"github.com/tomtom215/cinemamaya/internal/logging"
)

// RequestIDHeader carries the tracing identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds identifiers accepted from upstream proxies.
const maxRequestIDLen = 128

// RequestID assigns every request an identifier and a request-scoped logger.
// An upstream X-Request-ID is preserved when it is printable and short enough.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = logging.GenerateRequestID()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithLogger(ctx, logging.WithComponent("http"))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
