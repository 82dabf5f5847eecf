// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

// Package services adapts long-running components to suture.Service.
//
// Every service blocks in Serve until its context is canceled, returns
// ctx.Err() on a clean stop and implements fmt.Stringer so supervisor events
// name it.
//
//   - HTTPServerService wraps *http.Server with graceful shutdown
//   - SpaceWarmer pre-fits the vector space and sweeps the in-memory cache
package services
