// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinemamaya/internal/config"
	"github.com/tomtom215/cinemamaya/internal/logging"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliState is shared by the subcommands of one invocation.
type cliState struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	rootCmd := &cobra.Command{
		Use:   "cinemamaya",
		Short: "Explainable personalized movie ranking",
		Long: `cinemamaya ranks unseen catalog movies for a user from their genre
affinity, descriptive similarity to what they watched, and what people they
follow loved. Every result carries a human-readable reason.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.LoadWithKoanf(state.configPath)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logging.Init(logging.Config{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				Caller:    cfg.Logging.Caller,
				Timestamp: true,
				Output:    cmd.ErrOrStderr(),
				Version:   version,
			})
			state.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&state.configPath, "config", "", "Path to config file (default: $CONFIG_PATH or ./config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(state),
		newRankCmd(state),
		newProfileCmd(state),
		newSeedCmd(state),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cinemamaya version %s\n", version)
		},
	}
}
