// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package database

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinemamaya/internal/config"
	"github.com/tomtom215/cinemamaya/internal/logging"
	"github.com/tomtom215/cinemamaya/internal/metrics"
	"github.com/tomtom215/cinemamaya/internal/recommend"
)

// BreakerName labels the signal store breaker in metrics and logs.
const BreakerName = "signal-store"

// ErrCircuitOpen marks feed reads rejected by the breaker.
var ErrCircuitOpen = errors.New("signal store circuit open")

// BreakerStore wraps a SignalProvider with circuit breaker protection.
// Rejected calls fail with an error that is both ErrCircuitOpen and
// recommend.ErrDataUnavailable.
//
// A canceled or expired caller context is not counted as a store failure.
type BreakerStore struct {
	inner recommend.SignalProvider
	cb    *gobreaker.CircuitBreaker[interface{}]
	name  string
}

// NewBreakerStore creates a breaker around inner.
// The circuit opens when the failure ratio reaches cfg.FailureThreshold over at
// least cfg.MinRequests calls within cfg.Interval, and probes again after cfg.Timeout.
func NewBreakerStore(inner recommend.SignalProvider, cfg *config.BreakerConfig) *BreakerStore {
	name := BreakerName

	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureThreshold
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})

	return &BreakerStore{inner: inner, cb: cb, name: name}
}

// State returns the current breaker state name.
func (b *BreakerStore) State() string {
	return stateToString(b.cb.State())
}

// execute wraps one feed read with circuit breaker protection
func (b *BreakerStore) execute(feed string, fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Str("feed", feed).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, &recommend.DataUnavailableError{
				Feed: feed,
				Err:  fmt.Errorf("%w: %w", ErrCircuitOpen, err),
			}
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// castResult safely type-casts the circuit breaker result with error checking
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// ConsumptionRecords reads the consumption feed through the breaker.
func (b *BreakerStore) ConsumptionRecords(ctx context.Context, userID int64) ([]recommend.ConsumptionRecord, error) {
	return castResult[[]recommend.ConsumptionRecord](b.execute(recommend.FeedConsumption, func() (interface{}, error) {
		return b.inner.ConsumptionRecords(ctx, userID)
	}))
}

// SocialSignal reads the social feed through the breaker.
func (b *BreakerStore) SocialSignal(ctx context.Context, userID int64) ([]int64, error) {
	return castResult[[]int64](b.execute(recommend.FeedSocial, func() (interface{}, error) {
		return b.inner.SocialSignal(ctx, userID)
	}))
}

// Catalog reads the catalog through the breaker.
func (b *BreakerStore) Catalog(ctx context.Context) ([]recommend.CatalogItem, error) {
	return castResult[[]recommend.CatalogItem](b.execute(recommend.FeedCatalog, func() (interface{}, error) {
		return b.inner.Catalog(ctx)
	}))
}

// SeenItems reads the seen feed through the breaker.
func (b *BreakerStore) SeenItems(ctx context.Context, userID int64) ([]int64, error) {
	return castResult[[]int64](b.execute(recommend.FeedSeen, func() (interface{}, error) {
		return b.inner.SeenItems(ctx, userID)
	}))
}

// TrendingAmongFriends forwards to the wrapped provider when it reports trends.
// Providers without trends yield an empty list.
func (b *BreakerStore) TrendingAmongFriends(ctx context.Context, userID int64, limit int) ([]recommend.FriendTrend, error) {
	tp, ok := b.inner.(recommend.TrendProvider)
	if !ok {
		return []recommend.FriendTrend{}, nil
	}
	return castResult[[]recommend.FriendTrend](b.execute(recommend.FeedTrending, func() (interface{}, error) {
		return tp.TrendingAmongFriends(ctx, userID, limit)
	}))
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
