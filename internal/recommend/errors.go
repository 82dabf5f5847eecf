// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable reports that a signal feed could not be read.
	// It is distinct from an empty ranking, which is not an error.
	ErrDataUnavailable = errors.New("signal data unavailable")

	// ErrInvalidRequest reports a malformed ranking request.
	ErrInvalidRequest = errors.New("invalid ranking request")

	// ErrSnapshotMiss is returned by snapshot stores that hold no space for a checksum.
	ErrSnapshotMiss = errors.New("vector space snapshot not found")
)

// Signal feed names used in DataUnavailableError and metrics labels.
const (
	FeedConsumption = "consumption_records"
	FeedSocial      = "social_signal"
	FeedCatalog     = "catalog"
	FeedSeen        = "seen_items"
	FeedTrending    = "friend_trending"
)

// DataUnavailableError wraps a feed failure.
// errors.Is matches both ErrDataUnavailable and the underlying cause.
type DataUnavailableError struct {
	Feed string
	Err  error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDataUnavailable.Error(), e.Feed, e.Err)
}

// Unwrap returns both the sentinel and the cause.
func (e *DataUnavailableError) Unwrap() []error {
	return []error{ErrDataUnavailable, e.Err}
}

func unavailable(feed string, err error) error {
	return &DataUnavailableError{Feed: feed, Err: err}
}

func invalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
