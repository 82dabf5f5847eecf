// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinemamaya/internal/api"
	"github.com/tomtom215/cinemamaya/internal/logging"
	"github.com/tomtom215/cinemamaya/internal/supervisor"
	"github.com/tomtom215/cinemamaya/internal/supervisor/services"
)

func newServeCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ranking HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, state)
		},
	}
}

func serve(ctx context.Context, state *cliState) error {
	cfg := state.cfg
	rt, err := wire(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing resources")
		}
	}()

	if cfg.API.RateLimitPerMinute == 0 {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_PER_MINUTE=0)")
	}
	for _, origin := range cfg.API.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*). Set explicit origins in production")
			break
		}
	}

	handlerCfg := api.HandlerConfig{
		PosterBaseURL: cfg.API.PosterBaseURL,
		Version:       version,
		DB:            rt.db,
	}
	if rt.breaker != nil {
		handlerCfg.Breaker = rt.breaker
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(api.NewHandler(rt.engine, handlerCfg), &cfg.API),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), treeCfg)

	warmCfg := services.SpaceWarmerConfig{
		WarmOnStartup: cfg.Cache.WarmOnStartup,
		Interval:      cfg.Cache.WarmInterval,
	}
	tree.AddMaintenanceService(services.NewSpaceWarmer(rt.engine, rt.sweeper(), warmCfg, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServiceConfig{
		Addr:            addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logging.Logger()))

	logging.Info().
		Str("addr", server.Addr).
		Str("version", version).
		Bool("breaker", rt.breaker != nil).
		Bool("space_cache", rt.spaces != nil).
		Bool("snapshots", rt.snapshots != nil).
		Msg("Starting cinemamaya")

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
	return nil
}
