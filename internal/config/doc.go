// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

/*
Package config provides centralized configuration management for Cinemamaya.

Configuration is layered with Koanf: struct defaults, then an optional YAML
file, then environment variables. The result is checked with validator tags
and a few cross-field rules before use.

# Configuration File

The file is taken from the --config flag, else CONFIG_PATH, else the first of
DefaultConfigPaths that exists:

	database:
	  path: /data/cinemamaya.duckdb
	  max_memory: 1GB
	server:
	  port: 8480
	ranking:
	  genre_weight: 2.5
	  content_weight: 1.2
	  social_boost: 1.25
	  jitter_bucket: 45s
	  jitter_multipliers: [1.00, 1.05, 1.10]
	cache:
	  snapshot_path: /data/snapshots

# Environment Variables

Only mapped names are read; everything else in the environment is ignored.

  - CINEMAMAYA_DB_PATH, DUCKDB_PATH: database.path
  - DUCKDB_MAX_MEMORY, DUCKDB_THREADS, DUCKDB_QUERY_TIMEOUT
  - HTTP_HOST, HTTP_PORT, HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - RANKING_* for every ranking field (RANKING_JITTER_MULTIPLIERS is comma-separated)
  - SPACE_CACHE_ENABLED, SPACE_CACHE_MAX_ENTRIES, SPACE_CACHE_TTL, SNAPSHOT_PATH, SNAPSHOT_TTL
  - SPACE_WARM_ON_STARTUP, SPACE_WARM_INTERVAL
  - BREAKER_ENABLED, BREAKER_MAX_REQUESTS, BREAKER_INTERVAL, BREAKER_TIMEOUT,
    BREAKER_MIN_REQUESTS, BREAKER_FAILURE_THRESHOLD
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_PER_MINUTE, POSTER_BASE_URL

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	engineCfg := cfg.Ranking.ToEngineConfig()
*/
package config
