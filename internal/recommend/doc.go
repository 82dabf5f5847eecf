// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

// Package recommend implements the explainable personalized ranking engine.
//
// # Architecture
//
// A ranking call fetches four read-only feeds through a SignalProvider and
// then runs pure in-memory scoring:
//
//   - Genre affinity: the user's consumption records are folded into a
//     weighted genre map; the strongest tokens form the active set
//   - Text similarity: a TF-IDF space is fitted over catalog descriptions and
//     the user's aggregate description text is projected into it
//   - Social boost: items rated highly by followed users get a multiplier
//   - Fusion: (genre*W_genre + content*W_content) * social * jitter
//   - Explanation and confidence are attached to the top N results
//
// Rank is the pure core and takes every signal as a parameter. Engine wraps
// it with fetching, request validation, vector space caching and logging.
//
// # Usage
//
//	engine, err := recommend.NewEngine(store, recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := engine.Rank(ctx, recommend.Request{UserID: 42, TopN: 12})
//	if errors.Is(err, recommend.ErrDataUnavailable) {
//	    // store is down, not the same as "nothing to recommend"
//	}
//
// # Determinism
//
// Output depends only on the feeds and the freshness seed. The seed defaults
// to the current time bucket (45s wide), so repeated calls within one bucket
// return identical rankings. Tests pass Request.Seed to pin it.
//
// # Thread Safety
//
// The engine holds no per-request mutable state and is safe for concurrent
// use. The optional space cache is itself synchronized.
package recommend
