// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine fetches signals and runs Rank. It is safe for concurrent use.
type Engine struct {
	config   *Config
	provider SignalProvider
	logger   zerolog.Logger

	spaces    SpaceCache
	snapshots SnapshotStore
	observer  Observer
	now       func() time.Time

	requestCount atomic.Int64
	emptyCount   atomic.Int64
	errorCount   atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSpaceCache keeps fitted vector spaces in memory.
func WithSpaceCache(c SpaceCache) Option {
	return func(e *Engine) { e.spaces = c }
}

// WithSnapshotStore persists fitted vector spaces.
func WithSnapshotStore(s SnapshotStore) Option {
	return func(e *Engine) { e.snapshots = s }
}

// WithObserver reports telemetry to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithClock replaces time.Now as the source of the freshness seed.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a ranking engine over provider.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(provider SignalProvider, cfg *Config, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, errors.New("signal provider is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:   cfg.Clone(),
		provider: provider,
		logger:   logger.With().Str("component", "recommend").Logger(),
		observer: noopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Rank produces the ranking for one user.
//
// An empty ranking is not an error; Metadata.EmptyReason says why it is
// empty. Feed failures are returned as *DataUnavailableError.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Rank(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req, err := e.prepareRequest(req)
	if err != nil {
		e.observer.ObserveRank(OutcomeInvalid, time.Since(start), 0, "")
		return nil, err
	}
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Int64("user_id", req.UserID).
		Logger()
	logger.Debug().Int("top_n", req.TopN).Msg("processing ranking request")

	seed := FreshnessSeed(e.now(), e.config.Jitter.BucketWidth)
	if req.Seed != nil {
		seed = *req.Seed
	}

	sig, space, source, err := e.fetch(ctx, req.UserID)
	if err != nil {
		e.errorCount.Add(1)
		e.observer.ObserveRank(OutcomeUnavailable, time.Since(start), 0, "")
		logger.Warn().Err(err).Msg("signal fetch failed")
		return nil, err
	}

	ranking := Rank(e.config, sig, space, seed, req.TopN)

	resp := &Response{
		Items: ranking.Items,
		Metadata: ResponseMetadata{
			RequestID:       req.RequestID,
			UserID:          req.UserID,
			TopN:            req.TopN,
			Records:         ranking.Records,
			Candidates:      ranking.Candidates,
			EmptyReason:     ranking.EmptyReason,
			ActiveGenres:    ranking.ActiveGenres,
			HistoryStrength: HistoryStrength(ranking.Records),
			Seed:            seed,
			SpaceSource:     source,
			LatencyMS:       time.Since(start).Milliseconds(),
			Timestamp:       time.Now(),
		},
	}
	if space != nil {
		resp.Metadata.CatalogChecksum = space.Checksum
	}

	outcome := OutcomeRanked
	if len(resp.Items) == 0 {
		outcome = OutcomeEmpty
		e.emptyCount.Add(1)
	}
	e.observer.ObserveRank(outcome, time.Since(start), ranking.Candidates, ranking.EmptyReason)

	logger.Debug().
		Int("records", ranking.Records).
		Int("candidates", ranking.Candidates).
		Int("returned", len(resp.Items)).
		Str("empty_reason", ranking.EmptyReason).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("ranking complete")

	return resp, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) (Request, error) {
	if req.UserID <= 0 {
		return req, invalidRequest("user_id must be positive, got %d", req.UserID)
	}
	if req.TopN < 0 {
		return req, invalidRequest("top_n must be positive, got %d", req.TopN)
	}
	if req.TopN == 0 {
		req.TopN = e.config.Limits.DefaultTopN
	}
	if req.TopN > e.config.Limits.MaxTopN {
		return req, invalidRequest("top_n must be at most %d, got %d", e.config.Limits.MaxTopN, req.TopN)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	return req, nil
}

// fetch reads the feeds. Users below the history threshold, or without any
// genre signal, never trigger a catalog read.
func (e *Engine) fetch(ctx context.Context, userID int64) (Signals, *VectorSpace, string, error) {
	var sig Signals

	if e.config.Limits.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Limits.FetchTimeout)
		defer cancel()
	}

	records, err := e.provider.ConsumptionRecords(ctx, userID)
	if err != nil {
		return sig, nil, "", asUnavailable(FeedConsumption, err)
	}
	sig.Records = DedupeRecords(records)
	if len(sig.Records) == 0 || len(sig.Records) < e.config.Affinity.MinRecords {
		return sig, nil, "", nil
	}
	if BuildGenreAffinity(sig.Records, e.config.Affinity.TopGenres, e.config.Affinity.ImplicitWeight).Empty() {
		return sig, nil, "", nil
	}

	if sig.Catalog, err = e.provider.Catalog(ctx); err != nil {
		return sig, nil, "", asUnavailable(FeedCatalog, err)
	}
	if sig.Social, err = e.provider.SocialSignal(ctx, userID); err != nil {
		return sig, nil, "", asUnavailable(FeedSocial, err)
	}
	if sig.Seen, err = e.provider.SeenItems(ctx, userID); err != nil {
		return sig, nil, "", asUnavailable(FeedSeen, err)
	}

	space, source := e.vectorSpace(ctx, sig.Catalog)
	return sig, space, source, nil
}

// vectorSpace resolves the space for a catalog: memory, then snapshot, then fit.
// Cache and snapshot failures only cost a refit.
func (e *Engine) vectorSpace(ctx context.Context, catalog []CatalogItem) (*VectorSpace, string) {
	start := time.Now()
	checksum := CatalogChecksum(catalog)

	if e.spaces != nil {
		if space, ok := e.spaces.Get(checksum); ok && space.Matches(catalog) {
			e.observer.ObserveSpace(SpaceMemory, time.Since(start))
			return space, SpaceMemory
		}
	}

	if e.snapshots != nil {
		space, err := e.snapshots.LoadSpace(ctx, checksum)
		switch {
		case err == nil && space.Matches(catalog):
			if e.spaces != nil {
				e.spaces.Add(checksum, space)
			}
			e.observer.ObserveSpace(SpaceSnapshot, time.Since(start))
			return space, SpaceSnapshot
		case err != nil && !errors.Is(err, ErrSnapshotMiss):
			e.logger.Warn().Err(err).Str("checksum", checksum).Msg("vector space snapshot load failed")
		}
	}

	space := BuildVectorSpace(catalog, e.config.Text.MaxFeatures)
	e.observer.ObserveSpace(SpaceBuilt, time.Since(start))

	if e.spaces != nil {
		e.spaces.Add(checksum, space)
	}
	if e.snapshots != nil {
		if err := e.snapshots.SaveSpace(ctx, space); err != nil {
			e.logger.Warn().Err(err).Str("checksum", checksum).Msg("vector space snapshot save failed")
		}
	}

	e.logger.Debug().
		Int("items", len(catalog)).
		Int("vocabulary", len(space.Vocabulary)).
		Dur("elapsed", time.Since(start)).
		Msg("vector space fitted")
	return space, SpaceBuilt
}

// WarmResult describes one WarmSpace call.
type WarmResult struct {
	Checksum string
	Items    int
	Source   string
}

// WarmSpace reads the catalog and resolves its vector space so the next
// ranking finds it in memory. Only the catalog feed is read.
func (e *Engine) WarmSpace(ctx context.Context) (WarmResult, error) {
	if e.config.Limits.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Limits.FetchTimeout)
		defer cancel()
	}

	catalog, err := e.provider.Catalog(ctx)
	if err != nil {
		return WarmResult{}, asUnavailable(FeedCatalog, err)
	}
	if len(catalog) == 0 {
		return WarmResult{Checksum: CatalogChecksum(catalog)}, nil
	}

	space, source := e.vectorSpace(ctx, catalog)
	return WarmResult{Checksum: space.Checksum, Items: len(catalog), Source: source}, nil
}

// Profile returns the user's active genre affinity set.
func (e *Engine) Profile(ctx context.Context, userID int64) (*Profile, error) {
	if userID <= 0 {
		return nil, invalidRequest("user_id must be positive, got %d", userID)
	}
	if e.config.Limits.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Limits.FetchTimeout)
		defer cancel()
	}

	records, err := e.provider.ConsumptionRecords(ctx, userID)
	if err != nil {
		return nil, asUnavailable(FeedConsumption, err)
	}
	records = DedupeRecords(records)
	affinity := BuildGenreAffinity(records, e.config.Affinity.TopGenres, e.config.Affinity.ImplicitWeight)

	return &Profile{
		UserID:  userID,
		Records: len(records),
		Genres:  affinity.Active(),
	}, nil
}

// TrendingAmongFriends returns titles most often diarized by followed users.
// Providers that do not implement TrendProvider yield an empty list.
func (e *Engine) TrendingAmongFriends(ctx context.Context, userID int64, limit int) ([]FriendTrend, error) {
	if userID <= 0 {
		return nil, invalidRequest("user_id must be positive, got %d", userID)
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > e.config.Limits.MaxTopN {
		return nil, invalidRequest("limit must be at most %d, got %d", e.config.Limits.MaxTopN, limit)
	}

	tp, ok := e.provider.(TrendProvider)
	if !ok {
		return []FriendTrend{}, nil
	}
	trends, err := tp.TrendingAmongFriends(ctx, userID, limit)
	if err != nil {
		return nil, asUnavailable(FeedTrending, err)
	}
	if trends == nil {
		trends = []FriendTrend{}
	}
	return trends, nil
}

// Stats reports request counters since the engine was created.
func (e *Engine) Stats() (requests, empty, errs int64) {
	return e.requestCount.Load(), e.emptyCount.Load(), e.errorCount.Load()
}

// asUnavailable wraps err unless it already is a DataUnavailableError.
func asUnavailable(feed string, err error) error {
	var due *DataUnavailableError
	if errors.As(err, &due) {
		return err
	}
	return unavailable(feed, err)
}
