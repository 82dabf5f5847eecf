// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/cinemamaya/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinemamaya/config.yaml",
	"/etc/cinemamaya/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := defaultRanking()
	return &Config{
		Database: DatabaseConfig{
			Path:         "/data/cinemamaya.duckdb",
			MaxMemory:    "1GB",
			Threads:      0, // 0 = use runtime.NumCPU()
			QueryTimeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8480,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Ranking: engine,
		Cache: CacheConfig{
			Enabled:       true,
			MaxEntries:    4,
			TTL:           time.Hour,
			SnapshotPath:  "", // in-memory Badger
			SnapshotTTL:   7 * 24 * time.Hour,
			WarmOnStartup: true,
			WarmInterval:  10 * time.Minute,
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			MinRequests:      10,
			FailureThreshold: 0.6,
		},
		API: APIConfig{
			CORSOrigins:        []string{"*"},
			RateLimitPerMinute: 120,
			PosterBaseURL:      "https://image.tmdb.org/t/p/w500",
		},
	}
}

// defaultRanking mirrors recommend.DefaultConfig in the flat file layout
func defaultRanking() RankingConfig {
	def := recommend.DefaultConfig()
	return RankingConfig{
		GenreWeight:       def.Weights.Genre,
		ContentWeight:     def.Weights.Content,
		SocialBoost:       def.Social.Boost,
		SocialMinRating:   def.Social.MinRating,
		TopGenres:         def.Affinity.TopGenres,
		ImplicitWeight:    def.Affinity.ImplicitWeight,
		MinRecords:        def.Affinity.MinRecords,
		JitterBucket:      def.Jitter.BucketWidth,
		JitterMultipliers: def.Jitter.Multipliers,
		MaxFeatures:       def.Text.MaxFeatures,
		DefaultTopN:       def.Limits.DefaultTopN,
		MaxTopN:           def.Limits.MaxTopN,
		FetchTimeout:      def.Limits.FetchTimeout,
	}
}

// Load is LoadWithKoanf with the file located via CONFIG_PATH or DefaultConfigPaths.
func Load() (*Config, error) {
	return LoadWithKoanf("")
}

// LoadWithKoanf loads configuration using Koanf with layered sources.
//
// Configuration is loaded in the following order (later sources override earlier):
//  1. Built-in defaults
//  2. Config file (configPath, else CONFIG_PATH, else DefaultConfigPaths)
//  3. Environment variables
func LoadWithKoanf(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (if exists)
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"api.cors_origins",
	"ranking.jitter_multipliers",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Database mappings
	"cinemamaya_db_path":   "database.path",
	"duckdb_path":          "database.path",
	"duckdb_max_memory":    "database.max_memory",
	"duckdb_threads":       "database.threads",
	"duckdb_query_timeout": "database.query_timeout",

	// Server mappings
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Ranking mappings
	"ranking_genre_weight":       "ranking.genre_weight",
	"ranking_content_weight":     "ranking.content_weight",
	"ranking_social_boost":       "ranking.social_boost",
	"ranking_social_min_rating":  "ranking.social_min_rating",
	"ranking_top_genres":         "ranking.top_genres",
	"ranking_implicit_weight":    "ranking.implicit_weight",
	"ranking_min_records":        "ranking.min_records",
	"ranking_jitter_bucket":      "ranking.jitter_bucket",
	"ranking_jitter_multipliers": "ranking.jitter_multipliers",
	"ranking_max_features":       "ranking.max_features",
	"ranking_default_top_n":      "ranking.default_top_n",
	"ranking_max_top_n":          "ranking.max_top_n",
	"ranking_fetch_timeout":      "ranking.fetch_timeout",

	// Cache mappings
	"space_cache_enabled":     "cache.enabled",
	"space_cache_max_entries": "cache.max_entries",
	"space_cache_ttl":         "cache.ttl",
	"snapshot_path":           "cache.snapshot_path",
	"snapshot_ttl":            "cache.snapshot_ttl",
	"space_warm_on_startup":   "cache.warm_on_startup",
	"space_warm_interval":     "cache.warm_interval",

	// Circuit breaker mappings
	"breaker_enabled":           "breaker.enabled",
	"breaker_max_requests":      "breaker.max_requests",
	"breaker_interval":          "breaker.interval",
	"breaker_timeout":           "breaker.timeout",
	"breaker_min_requests":      "breaker.min_requests",
	"breaker_failure_threshold": "breaker.failure_threshold",

	// API mappings
	"cors_origins":          "api.cors_origins",
	"rate_limit_per_minute": "api.rate_limit_per_minute",
	"poster_base_url":       "api.poster_base_url",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - CINEMAMAYA_DB_PATH -> database.path
//   - LOG_LEVEL -> logging.level
//   - RANKING_GENRE_WEIGHT -> ranking.genre_weight
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
