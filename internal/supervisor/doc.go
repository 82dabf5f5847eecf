// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

/*
Package supervisor runs the long-lived parts of `cinemamaya serve` under a
suture v4 supervisor tree.

	cinemamaya (root)
	├── maintenance-layer
	│   └── space-warmer     pre-fits the TF-IDF space, sweeps expired cache entries
	└── api-layer
	    └── http-server      chi router behind net/http

A failing service is restarted with backoff by its layer supervisor; the
other layer keeps running. Supervisor events are logged through sutureslog
using the zerolog-backed slog handler from internal/logging.

Usage:

	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddMaintenanceService(services.NewSpaceWarmer(engine, spaceCache, warmCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServiceConfig{Addr: addr}, logger))
	errCh := tree.ServeBackground(ctx)
*/
package supervisor
