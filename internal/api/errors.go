// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/cinemamaya/internal/recommend"
	"github.com/tomtom215/cinemamaya/internal/validation"
)

// Error codes returned in APIError.Code.
const (
	CodeValidation       = validation.CodeValidation
	CodeDataUnavailable  = "DATA_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
)

const unavailableMessage = "Signal data is temporarily unavailable"

// respondEngineError maps engine errors onto HTTP status codes.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var due *recommend.DataUnavailableError
	switch {
	case errors.Is(err, recommend.ErrInvalidRequest):
		respondError(w, r, http.StatusBadRequest, &APIError{
			Code:    CodeValidation,
			Message: err.Error(),
		}, err)
	case errors.As(err, &due):
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    CodeDataUnavailable,
			Message: unavailableMessage,
			Details: map[string]interface{}{"feed": due.Feed},
		}, err)
	case errors.Is(err, recommend.ErrDataUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    CodeDataUnavailable,
			Message: unavailableMessage,
		}, err)
	default:
		respondError(w, r, http.StatusInternalServerError, &APIError{
			Code:    CodeInternal,
			Message: "Internal server error",
		}, err)
	}
}

// respondValidationError writes a 400 for rejected query input.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondError(w, r, http.StatusBadRequest, &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}, nil)
}
