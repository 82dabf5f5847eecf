// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package config

import (
	"fmt"

	"github.com/tomtom215/cinemamaya/internal/validation"
)

// Validate checks that the configuration is complete and consistent
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	validators := []func() error{
		c.validateServer,
		c.validateRanking,
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer checks timeouts that relate to each other
func (c *Config) validateServer() error {
	if c.Server.ShutdownTimeout < c.Server.WriteTimeout {
		return fmt.Errorf("server.shutdown_timeout (%v) must be at least server.write_timeout (%v)",
			c.Server.ShutdownTimeout, c.Server.WriteTimeout)
	}
	return nil
}

// validateRanking defers to the engine's own rules so both layers agree
func (c *Config) validateRanking() error {
	if c.Ranking.MaxTopN < c.Ranking.DefaultTopN {
		return fmt.Errorf("ranking.max_top_n (%d) must be at least ranking.default_top_n (%d)",
			c.Ranking.MaxTopN, c.Ranking.DefaultTopN)
	}
	if err := c.Ranking.ToEngineConfig().Validate(); err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	return nil
}
