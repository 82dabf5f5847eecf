// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package main

import (
	"errors"
	"fmt"

	"github.com/tomtom215/cinemamaya/internal/cache"
	"github.com/tomtom215/cinemamaya/internal/config"
	"github.com/tomtom215/cinemamaya/internal/database"
	"github.com/tomtom215/cinemamaya/internal/logging"
	"github.com/tomtom215/cinemamaya/internal/metrics"
	"github.com/tomtom215/cinemamaya/internal/recommend"
	"github.com/tomtom215/cinemamaya/internal/recommend/storage"
	"github.com/tomtom215/cinemamaya/internal/supervisor/services"
)

// app holds the wired components of one process.
type app struct {
	db        *database.DB
	engine    *recommend.Engine
	spaces    *cache.LRU[*recommend.VectorSpace]
	breaker   *database.BreakerStore
	snapshots *storage.Store
}

// wire opens the signal store and builds the engine around it.
// Close must be called on the returned app.
func wire(cfg *config.Config) (*app, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	rt := &app{db: db}

	var provider recommend.SignalProvider = database.NewSignalStore(db, cfg.Ranking.SocialMinRating)
	if cfg.Breaker.Enabled {
		rt.breaker = database.NewBreakerStore(provider, &cfg.Breaker)
		provider = rt.breaker
	}

	opts := []recommend.Option{recommend.WithObserver(metrics.RankObserver{})}

	if cfg.Cache.Enabled {
		rt.spaces = cache.NewLRU[*recommend.VectorSpace](cfg.Cache.MaxEntries, cfg.Cache.TTL)
		rt.spaces.OnEvict(func(string) { metrics.VectorSpaceEvictions.Inc() })
		opts = append(opts, recommend.WithSpaceCache(rt.spaces))
	}

	if cfg.Cache.SnapshotPath != config.SnapshotsDisabled {
		rt.snapshots, err = storage.Open(storage.Config{
			Path: cfg.Cache.SnapshotPath,
			TTL:  cfg.Cache.SnapshotTTL,
		}, logging.Logger())
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		opts = append(opts, recommend.WithSnapshotStore(rt.snapshots))
	}

	rt.engine, err = recommend.NewEngine(provider, cfg.Ranking.ToEngineConfig(), logging.Logger(), opts...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return rt, nil
}

// sweeper returns the space cache for expiry sweeps. A disabled cache is
// returned as an untyped nil so the warmer sees no cache at all.
func (rt *app) sweeper() services.ExpiringCache {
	if rt.spaces == nil {
		return nil
	}
	return rt.spaces
}

// Close releases the snapshot store and the database.
func (rt *app) Close() error {
	var errs []error
	if rt.snapshots != nil {
		if err := rt.snapshots.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close snapshot store: %w", err))
		}
	}
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
