// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

/*
Package database provides the DuckDB-backed signal store for Cinemamaya.

The store owns the movie catalog and the per-user activity tables (reviews,
diary, watchlist, followers) and exposes them to the ranking engine as the
read-only feeds of recommend.SignalProvider.

# Schema

	movies(movie_id, tmdb_id, title, overview, genres, poster_path, popularity)
	users(user_id, username)
	reviews(user_id, movie_id, rating, review_text, created_at)
	diary(user_id, movie_id, rating, watched_date)
	watchlist(user_id, movie_id, priority)
	followers(follower_id, following_id)

movies.genres is stored as received. It may hold a JSON list of {"id","name"}
objects, a JSON list of strings, delimited text or garbage; parsing happens on
read through recommend.ParseGenreTags.

# Feeds

  - ConsumptionRecords: diary, watchlist and reviews joined to movies, one row
    per movie. The rating is the latest review rating, else the latest diary
    rating, else absent.
  - SocialSignal: movies reviewed at or above the configured rating by users
    the requester follows.
  - Catalog: every movie ordered by movie_id.
  - SeenItems: movie ids in the user's diary, watchlist or reviews.

# Resilience

BreakerStore wraps any recommend.SignalProvider with a sony/gobreaker circuit
breaker. While the circuit is open every feed fails fast, and the engine
reports the failure as recommend.ErrDataUnavailable.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	store := database.NewSignalStore(db, cfg.Ranking.SocialMinRating)
	provider := database.NewBreakerStore(store, &cfg.Breaker)
*/
package database
