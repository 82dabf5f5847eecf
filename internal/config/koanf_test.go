// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/cinemamaya/internal/recommend"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Path != "/data/cinemamaya.duckdb" {
		t.Errorf("Database.Path = %q, want /data/cinemamaya.duckdb", cfg.Database.Path)
	}
	if cfg.Server.Port != 8480 {
		t.Errorf("Server.Port = %d, want 8480", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
	if cfg.API.PosterBaseURL != "https://image.tmdb.org/t/p/w500" {
		t.Errorf("API.PosterBaseURL = %q", cfg.API.PosterBaseURL)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != time.Hour || !cfg.Cache.WarmOnStartup || cfg.Cache.WarmInterval != 10*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Breaker.FailureThreshold != 0.6 || cfg.Breaker.MinRequests != 10 {
		t.Errorf("Breaker = %+v", cfg.Breaker)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// TestRankingDefaultsMatchEngine keeps the flat file layout and the engine defaults in step
func TestRankingDefaultsMatchEngine(t *testing.T) {
	got := defaultConfig().Ranking.ToEngineConfig()
	want := recommend.DefaultConfig()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToEngineConfig() = %+v, want %+v", got, want)
	}
}

func TestToEngineConfigCopiesMultipliers(t *testing.T) {
	r := defaultConfig().Ranking
	cfg := r.ToEngineConfig()
	cfg.Jitter.Multipliers[0] = 9
	if r.JitterMultipliers[0] == 9 {
		t.Error("ToEngineConfig() shares the multiplier slice")
	}
}

// TestEnvTransformFunc verifies environment variable name transformation
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"CINEMAMAYA_DB_PATH", "database.path"},
		{"DUCKDB_MAX_MEMORY", "database.max_memory"},
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"log_format", "logging.format"},
		{"RANKING_GENRE_WEIGHT", "ranking.genre_weight"},
		{"RANKING_JITTER_MULTIPLIERS", "ranking.jitter_multipliers"},
		{"SNAPSHOT_PATH", "cache.snapshot_path"},
		{"SPACE_WARM_INTERVAL", "cache.warm_interval"},
		{"BREAKER_TIMEOUT", "breaker.timeout"},
		{"CORS_ORIGINS", "api.cors_origins"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := envTransformFunc(tt.input); result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	origPaths := DefaultConfigPaths
	DefaultConfigPaths = []string{filepath.Join(tmpDir, "config.yaml")}
	t.Cleanup(func() { DefaultConfigPaths = origPaths })

	t.Run("no config file exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("default path exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		configPath := DefaultConfigPaths[0]
		if err := os.WriteFile(configPath, []byte("logging:\n  level: info\n"), 0o644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		if result := findConfigFile(); result != configPath {
			t.Errorf("findConfigFile() = %q, want %q", result, configPath)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(customPath, []byte("{}"), 0o644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		t.Setenv(ConfigPathEnvVar, customPath)

		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH with non-existent file falls back", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	return path
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8888
  host: "127.0.0.1"
logging:
  level: "warn"
ranking:
  genre_weight: 3
  jitter_multipliers: [1.0, 1.2]
  jitter_bucket: 1m
cache:
  snapshot_path: disabled
`)

	cfg, err := LoadWithKoanf(path)
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Ranking.GenreWeight != 3 {
		t.Errorf("Ranking.GenreWeight = %f, want 3", cfg.Ranking.GenreWeight)
	}
	if !reflect.DeepEqual(cfg.Ranking.JitterMultipliers, []float64{1.0, 1.2}) {
		t.Errorf("Ranking.JitterMultipliers = %v", cfg.Ranking.JitterMultipliers)
	}
	if cfg.Ranking.JitterBucket != time.Minute {
		t.Errorf("Ranking.JitterBucket = %v, want 1m", cfg.Ranking.JitterBucket)
	}
	if cfg.Cache.SnapshotPath != SnapshotsDisabled {
		t.Errorf("Cache.SnapshotPath = %q", cfg.Cache.SnapshotPath)
	}

	// Defaults are still applied for unset values
	if cfg.Ranking.ContentWeight != 1.2 {
		t.Errorf("Ranking.ContentWeight = %f, want 1.2 (default)", cfg.Ranking.ContentWeight)
	}
	if cfg.Database.Path != "/data/cinemamaya.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

// TestLoadWithKoanfEnvOverridesFile tests that env vars override config file
func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8888
logging:
  level: "warn"
`)
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CINEMAMAYA_DB_PATH", "/custom/db.duckdb")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RANKING_JITTER_MULTIPLIERS", "1,1.5")

	cfg, err := LoadWithKoanf(path)
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (env override)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env override)", cfg.Logging.Level)
	}
	if cfg.Database.Path != "/custom/db.duckdb" {
		t.Errorf("Database.Path = %q, want /custom/db.duckdb", cfg.Database.Path)
	}
	if !reflect.DeepEqual(cfg.API.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("API.CORSOrigins = %v", cfg.API.CORSOrigins)
	}
	if !reflect.DeepEqual(cfg.Ranking.JitterMultipliers, []float64{1, 1.5}) {
		t.Errorf("Ranking.JitterMultipliers = %v", cfg.Ranking.JitterMultipliers)
	}
}

func TestLoadWithKoanfMissingFile(t *testing.T) {
	if _, err := LoadWithKoanf(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadWithKoanf() should fail for an explicit missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "Port"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "Level must be one of"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, "Path is required"},
		{"negative genre weight", func(c *Config) { c.Ranking.GenreWeight = -1 }, "GenreWeight"},
		{"zero boost", func(c *Config) { c.Ranking.SocialBoost = 0 }, "SocialBoost"},
		{"no multipliers", func(c *Config) { c.Ranking.JitterMultipliers = nil }, "JitterMultipliers"},
		{"negative multiplier", func(c *Config) { c.Ranking.JitterMultipliers = []float64{1, -1} }, "JitterMultipliers[1]"},
		{"tiny jitter bucket", func(c *Config) { c.Ranking.JitterBucket = time.Millisecond }, "JitterBucket"},
		{"max below default", func(c *Config) { c.Ranking.MaxTopN = 5 }, "max_top_n"},
		{"threshold above one", func(c *Config) { c.Breaker.FailureThreshold = 1.5 }, "FailureThreshold"},
		{"bad poster url", func(c *Config) { c.API.PosterBaseURL = "not a url" }, "PosterBaseURL"},
		{"shutdown shorter than write", func(c *Config) { c.Server.ShutdownTimeout = time.Second }, "shutdown_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
