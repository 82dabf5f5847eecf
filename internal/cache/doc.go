// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

/*
Package cache provides a thread-safe LRU cache with TTL support.

The ranking engine keeps fitted TF-IDF vector spaces here, keyed by catalog
checksum, so repeated rankings over an unchanged catalog skip the fit.

# Overview

  - O(1) Get, Add and Remove through a hashmap plus doubly-linked list
  - O(1) eviction of the least recently used entry at capacity
  - Lazy TTL expiration on Get, plus CleanupExpired for sweeps
  - Optional eviction callback, used for metrics

# Usage

	spaces := cache.NewLRU[*recommend.VectorSpace](8, time.Hour)
	engine, err := recommend.NewEngine(store, cfg, logger, recommend.WithSpaceCache(spaces))

# Thread Safety

All methods are safe for concurrent use.
*/
package cache
