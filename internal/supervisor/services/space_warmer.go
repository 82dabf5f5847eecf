// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinemamaya/internal/recommend"
)

// defaultWarmInterval applies when no interval is configured.
const defaultWarmInterval = 10 * time.Minute

// SpaceWarmerEngine fits the catalog vector space ahead of requests.
type SpaceWarmerEngine interface {
	WarmSpace(ctx context.Context) (recommend.WarmResult, error)
}

// ExpiringCache drops entries past their TTL.
type ExpiringCache interface {
	CleanupExpired() int
}

// SpaceWarmerConfig configures a SpaceWarmer.
type SpaceWarmerConfig struct {
	// WarmOnStartup fits the space as soon as the service starts.
	WarmOnStartup bool

	// Interval is the period between warm and sweep passes.
	// Default: 10m
	Interval time.Duration
}

// SpaceWarmer keeps the vector space cache hot. Each tick sweeps expired
// entries, then re-resolves the current catalog's space so catalog changes
// are fitted in the background.
type SpaceWarmer struct {
	engine SpaceWarmerEngine
	cache  ExpiringCache
	config SpaceWarmerConfig
	logger zerolog.Logger
	name   string
}

// NewSpaceWarmer creates a warmer. cache may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSpaceWarmer(engine SpaceWarmerEngine, cache ExpiringCache, cfg SpaceWarmerConfig, logger zerolog.Logger) *SpaceWarmer {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultWarmInterval
	}
	return &SpaceWarmer{
		engine: engine,
		cache:  cache,
		config: cfg,
		logger: logger.With().Str("service", "space-warmer").Logger(),
		name:   "space-warmer",
	}
}

// Serve implements suture.Service. Warm failures are logged and retried on
// the next tick; they never restart the service.
func (s *SpaceWarmer) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("warm_on_startup", s.config.WarmOnStartup).
		Dur("interval", s.config.Interval).
		Msg("space warmer starting")

	if s.config.WarmOnStartup {
		s.warm(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("space warmer shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
			s.warm(ctx)
		}
	}
}

func (s *SpaceWarmer) warm(ctx context.Context) {
	start := time.Now()
	res, err := s.engine.WarmSpace(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("vector space warm failed")
		return
	}
	s.logger.Debug().
		Str("checksum", res.Checksum).
		Int("items", res.Items).
		Str("source", res.Source).
		Dur("elapsed", time.Since(start)).
		Msg("vector space warm")
}

func (s *SpaceWarmer) sweep() {
	if s.cache == nil {
		return
	}
	if removed := s.cache.CleanupExpired(); removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("expired vector spaces swept")
	}
}

// String implements fmt.Stringer.
func (s *SpaceWarmer) String() string {
	return s.name
}
