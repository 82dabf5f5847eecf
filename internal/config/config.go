// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package config

import (
	"time"

	"github.com/tomtom215/cinemamaya/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Ranking  RankingConfig  `koanf:"ranking"`
	Cache    CacheConfig    `koanf:"cache"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	API      APIConfig      `koanf:"api"`
}

// DatabaseConfig holds DuckDB settings for the signal store
type DatabaseConfig struct {
	Path         string        `koanf:"path" validate:"required"`
	MaxMemory    string        `koanf:"max_memory" validate:"required"`
	Threads      int           `koanf:"threads" validate:"min=0,max=256"` // 0 = use NumCPU
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gte=0"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// RankingConfig holds the tunables of the ranking engine.
// ToEngineConfig maps it onto recommend.Config.
type RankingConfig struct {
	GenreWeight       float64       `koanf:"genre_weight" validate:"gte=0"`
	ContentWeight     float64       `koanf:"content_weight" validate:"gte=0"`
	SocialBoost       float64       `koanf:"social_boost" validate:"gt=0"`
	SocialMinRating   float64       `koanf:"social_min_rating" validate:"gte=0,lte=5"`
	TopGenres         int           `koanf:"top_genres" validate:"min=1"`
	ImplicitWeight    float64       `koanf:"implicit_weight" validate:"gte=0"`
	MinRecords        int           `koanf:"min_records" validate:"min=0"`
	JitterBucket      time.Duration `koanf:"jitter_bucket" validate:"gte=1s"`
	JitterMultipliers []float64     `koanf:"jitter_multipliers" validate:"min=1,dive,gt=0"`
	MaxFeatures       int           `koanf:"max_features" validate:"min=1"`
	DefaultTopN       int           `koanf:"default_top_n" validate:"min=1"`
	MaxTopN           int           `koanf:"max_top_n" validate:"min=1"`
	FetchTimeout      time.Duration `koanf:"fetch_timeout" validate:"gte=0"`
}

// ToEngineConfig returns the engine configuration described by r.
func (r RankingConfig) ToEngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Weights.Genre = r.GenreWeight
	cfg.Weights.Content = r.ContentWeight
	cfg.Social.Boost = r.SocialBoost
	cfg.Social.MinRating = r.SocialMinRating
	cfg.Affinity.TopGenres = r.TopGenres
	cfg.Affinity.ImplicitWeight = r.ImplicitWeight
	cfg.Affinity.MinRecords = r.MinRecords
	cfg.Jitter.BucketWidth = r.JitterBucket
	cfg.Jitter.Multipliers = append([]float64(nil), r.JitterMultipliers...)
	cfg.Text.MaxFeatures = r.MaxFeatures
	cfg.Limits.DefaultTopN = r.DefaultTopN
	cfg.Limits.MaxTopN = r.MaxTopN
	cfg.Limits.FetchTimeout = r.FetchTimeout
	return cfg
}

// CacheConfig holds vector space cache settings.
// An empty SnapshotPath keeps snapshots in memory only; "disabled" turns them off.
type CacheConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxEntries   int           `koanf:"max_entries" validate:"min=1"`
	TTL          time.Duration `koanf:"ttl" validate:"gt=0"`
	SnapshotPath string        `koanf:"snapshot_path"`
	SnapshotTTL  time.Duration `koanf:"snapshot_ttl" validate:"gte=0"`

	// WarmOnStartup fits the catalog vector space before the first request.
	WarmOnStartup bool `koanf:"warm_on_startup"`

	// WarmInterval is the period of the background warm and sweep pass.
	WarmInterval time.Duration `koanf:"warm_interval" validate:"gt=0"`
}

// SnapshotsDisabled is the SnapshotPath value that turns off Badger snapshots.
const SnapshotsDisabled = "disabled"

// BreakerConfig holds circuit breaker settings for the signal store
type BreakerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	MaxRequests      uint32        `koanf:"max_requests" validate:"min=1"`
	Interval         time.Duration `koanf:"interval" validate:"gt=0"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	MinRequests      uint32        `koanf:"min_requests" validate:"min=1"`
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gt=0,lte=1"`
}

// APIConfig holds HTTP API settings
type APIConfig struct {
	CORSOrigins        []string `koanf:"cors_origins"`
	RateLimitPerMinute int      `koanf:"rate_limit_per_minute" validate:"min=0"` // 0 disables rate limiting
	PosterBaseURL      string   `koanf:"poster_base_url" validate:"omitempty,url"`
}
