// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinemamaya/internal/database"
	"github.com/tomtom215/cinemamaya/internal/logging"
)

func newSeedCmd(state *cliState) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML fixture into the signal store",
		Long: `seed reads a YAML fixture with movies, users, reviews, diary,
watchlist and followers sections and writes it in one transaction.
Movies and users are upserted, so a fixture can be applied more than once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file) //nolint:gosec // path comes from the operator
			if err != nil {
				return fmt.Errorf("open fixture: %w", err)
			}
			defer func() { _ = f.Close() }()

			fixture, err := database.ReadFixture(f)
			if err != nil {
				return err
			}

			db, err := database.New(&state.cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing database")
				}
			}()

			stats, err := db.Seed(cmd.Context(), fixture)
			if err != nil {
				return err
			}
			logging.Info().Str("file", file).Interface("stats", stats).Msg("Fixture loaded")
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d movies, %d users, %d reviews, %d diary entries, %d watchlist entries, %d follows\n",
				stats.Movies, stats.Users, stats.Reviews, stats.Diary, stats.Watchlist, stats.Followers)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Fixture file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
