// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package main

import (
	"github.com/spf13/cobra"
)

func newProfileCmd(state *cliState) *cobra.Command {
	var (
		userID  int64
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show a user's active genre affinity",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := wire(state.cfg)
			if err != nil {
				return err
			}
			defer closeApp(rt)

			profile, err := rt.engine.Profile(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), profile)
			}
			return writeProfile(cmd.OutOrStdout(), profile)
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "User ID (required)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
