// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package recommend

import (
	"context"
	"time"
)

// Note: this package imports no other internal package. Storage, caching and
// metrics are injected through the interfaces below.

// SignalProvider exposes the read-only feeds a ranking consumes.
// A user without history must yield empty collections, not an error.
type SignalProvider interface {
	// ConsumptionRecords returns the union of the user's rated, diarized and
	// watchlisted items, one record per item.
	ConsumptionRecords(ctx context.Context, userID int64) ([]ConsumptionRecord, error)

	// SocialSignal returns item IDs rated at or above the social threshold by
	// users the requester follows.
	SocialSignal(ctx context.Context, userID int64) ([]int64, error)

	// Catalog returns every rankable item in stable iteration order.
	Catalog(ctx context.Context) ([]CatalogItem, error)

	// SeenItems returns item IDs the user has already consumed.
	SeenItems(ctx context.Context, userID int64) ([]int64, error)
}

// TrendProvider is implemented by providers that can report social trends.
type TrendProvider interface {
	TrendingAmongFriends(ctx context.Context, userID int64, limit int) ([]FriendTrend, error)
}

// SpaceCache holds fitted vector spaces keyed by catalog checksum.
type SpaceCache interface {
	Get(key string) (*VectorSpace, bool)
	Add(key string, space *VectorSpace)
}

// SnapshotStore persists fitted vector spaces across restarts.
// LoadSpace returns an error wrapping ErrSnapshotMiss when nothing is stored.
type SnapshotStore interface {
	LoadSpace(ctx context.Context, checksum string) (*VectorSpace, error)
	SaveSpace(ctx context.Context, space *VectorSpace) error
}

// Observer receives ranking telemetry. Implementations must be cheap.
type Observer interface {
	ObserveRank(outcome string, elapsed time.Duration, candidates int, emptyReason string)
	ObserveSpace(source string, elapsed time.Duration)
}

// Rank outcomes passed to Observer.ObserveRank.
const (
	OutcomeRanked      = "ranked"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "unavailable"
	OutcomeInvalid     = "invalid"
)

// Space sources reported in metadata and to Observer.ObserveSpace.
const (
	SpaceBuilt    = "built"
	SpaceMemory   = "memory"
	SpaceSnapshot = "snapshot"
)

type noopObserver struct{}

func (noopObserver) ObserveRank(string, time.Duration, int, string) {}
func (noopObserver) ObserveSpace(string, time.Duration)             {}
