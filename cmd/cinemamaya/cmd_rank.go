// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/cinemamaya/internal/api"
	"github.com/tomtom215/cinemamaya/internal/logging"
	"github.com/tomtom215/cinemamaya/internal/recommend"
)

func newRankCmd(state *cliState) *cobra.Command {
	var (
		userID  int64
		limit   int
		seed    int64
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank unseen movies for a user",
		Example: `  cinemamaya rank --user 1
  cinemamaya rank --user 1 --limit 5 --seed 0 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := wire(state.cfg)
			if err != nil {
				return err
			}
			defer closeApp(rt)

			req := recommend.Request{
				UserID:    userID,
				TopN:      limit,
				RequestID: logging.GenerateRequestID(),
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			resp, err := rt.engine.Rank(cmd.Context(), req)
			if err != nil {
				return err
			}

			recs := api.NewRecommendations(resp, state.cfg.API.PosterBaseURL)
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), recs)
			}
			return writeRecommendations(cmd.OutOrStdout(), recs)
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "User ID to rank for (required)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of results (default: ranking.default_top_n)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Freshness seed override (default: current time bucket)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func closeApp(rt *app) {
	if err := rt.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing resources")
	}
}
