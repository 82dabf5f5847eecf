// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the ranking engine.
type Config struct {
	// Weights defines the fusion weights of genre and content scores.
	Weights FusionWeights `json:"weights"`

	// Affinity contains parameters of the genre affinity model.
	Affinity AffinityConfig `json:"affinity"`

	// Social contains parameters of the social boost model.
	Social SocialConfig `json:"social"`

	// Jitter contains parameters of the freshness multiplier.
	Jitter JitterConfig `json:"jitter"`

	// Text contains parameters of the TF-IDF space.
	Text TextConfig `json:"text"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`
}

// FusionWeights are the linear weights of the base score.
type FusionWeights struct {
	// Genre weights the genre affinity score.
	// Default: 2.5.
	Genre float64 `json:"genre"`

	// Content weights the text similarity score.
	// Default: 1.2.
	Content float64 `json:"content"`
}

// AffinityConfig contains genre affinity parameters.
type AffinityConfig struct {
	// TopGenres is the size of the active affinity set.
	// Default: 6.
	TopGenres int `json:"top_genres"`

	// ImplicitWeight is the weight of an unrated record.
	// Default: 3.
	ImplicitWeight float64 `json:"implicit_weight"`

	// MinRecords is the minimum number of distinct records needed to rank.
	// Default: 2.
	MinRecords int `json:"min_records"`
}

// SocialConfig contains social boost parameters.
type SocialConfig struct {
	// Boost multiplies the base score of socially endorsed items.
	// Default: 1.25.
	Boost float64 `json:"boost"`

	// MinRating is the rating a followed user must give for an endorsement.
	// Used by signal providers. Default: 4.
	MinRating float64 `json:"min_rating"`
}

// JitterConfig contains freshness multiplier parameters.
type JitterConfig struct {
	// BucketWidth is the time quantum of the freshness seed.
	// Default: 45s.
	BucketWidth time.Duration `json:"bucket_width"`

	// Multipliers are selected by seed modulo len(Multipliers).
	// Default: [1.00, 1.05, 1.10].
	Multipliers []float64 `json:"multipliers"`
}

// TextConfig contains TF-IDF parameters.
type TextConfig struct {
	// MaxFeatures caps the vocabulary size.
	// Default: 5000.
	MaxFeatures int `json:"max_features"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultTopN is used when a request does not set TopN.
	// Default: 12.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN caps TopN.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`

	// FetchTimeout bounds the signal fetch phase. Zero disables it.
	// Default: 5s.
	FetchTimeout time.Duration `json:"fetch_timeout"`
}

// DefaultConfig returns the default ranking configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: FusionWeights{
			Genre:   2.5,
			Content: 1.2,
		},
		Affinity: AffinityConfig{
			TopGenres:      6,
			ImplicitWeight: 3,
			MinRecords:     2,
		},
		Social: SocialConfig{
			Boost:     1.25,
			MinRating: 4,
		},
		Jitter: JitterConfig{
			BucketWidth: 45 * time.Second,
			Multipliers: []float64{1.00, 1.05, 1.10},
		},
		Text: TextConfig{
			MaxFeatures: 5000,
		},
		Limits: LimitsConfig{
			DefaultTopN:  12,
			MaxTopN:      100,
			FetchTimeout: 5 * time.Second,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.Genre < 0 {
		return fmt.Errorf("weights.genre must be non-negative, got %f", c.Weights.Genre)
	}
	if c.Weights.Content < 0 {
		return fmt.Errorf("weights.content must be non-negative, got %f", c.Weights.Content)
	}

	if c.Affinity.TopGenres < 1 {
		return fmt.Errorf("affinity.top_genres must be positive, got %d", c.Affinity.TopGenres)
	}
	if c.Affinity.ImplicitWeight < 0 {
		return fmt.Errorf("affinity.implicit_weight must be non-negative, got %f", c.Affinity.ImplicitWeight)
	}
	if c.Affinity.MinRecords < 0 {
		return fmt.Errorf("affinity.min_records must be non-negative, got %d", c.Affinity.MinRecords)
	}

	if c.Social.Boost <= 0 {
		return fmt.Errorf("social.boost must be positive, got %f", c.Social.Boost)
	}

	if c.Jitter.BucketWidth < time.Second {
		return fmt.Errorf("jitter.bucket_width must be at least 1s, got %v", c.Jitter.BucketWidth)
	}
	if len(c.Jitter.Multipliers) == 0 {
		return fmt.Errorf("jitter.multipliers must not be empty")
	}
	for i, m := range c.Jitter.Multipliers {
		if m <= 0 {
			return fmt.Errorf("jitter.multipliers[%d] must be positive, got %f", i, m)
		}
	}

	if c.Text.MaxFeatures < 1 {
		return fmt.Errorf("text.max_features must be positive, got %d", c.Text.MaxFeatures)
	}

	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("limits.default_top_n must be positive, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("limits.max_top_n must be >= limits.default_top_n, got %d < %d", c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}
	if c.Limits.FetchTimeout < 0 {
		return fmt.Errorf("limits.fetch_timeout must be non-negative, got %v", c.Limits.FetchTimeout)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Jitter.Multipliers = append([]float64(nil), c.Jitter.Multipliers...)
	return &clone
}
