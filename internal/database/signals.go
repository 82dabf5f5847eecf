// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/cinemamaya/internal/metrics"
	"github.com/tomtom215/cinemamaya/internal/recommend"
)

// SignalStore serves the ranking feeds from DuckDB.
// It implements recommend.SignalProvider and recommend.TrendProvider.
type SignalStore struct {
	db        *DB
	minRating float64
}

// NewSignalStore creates a store whose social feed counts reviews rated at
// least minRating.
func NewSignalStore(db *DB, minRating float64) *SignalStore {
	return &SignalStore{db: db, minRating: minRating}
}

const consumptionQuery = `
	WITH touched AS (
		SELECT movie_id FROM diary WHERE user_id = ?
		UNION
		SELECT movie_id FROM watchlist WHERE user_id = ?
		UNION
		SELECT movie_id FROM reviews WHERE user_id = ?
	),
	review_rating AS (
		SELECT movie_id, arg_max(rating, created_at) AS rating
		FROM reviews
		WHERE user_id = ? AND rating IS NOT NULL
		GROUP BY movie_id
	),
	diary_rating AS (
		SELECT movie_id, arg_max(rating, watched_date) AS rating
		FROM diary
		WHERE user_id = ? AND rating IS NOT NULL
		GROUP BY movie_id
	)
	SELECT
		m.movie_id,
		m.title,
		m.genres,
		m.overview,
		COALESCE(rr.rating, dr.rating) AS rating
	FROM touched t
	JOIN movies m ON m.movie_id = t.movie_id
	LEFT JOIN review_rating rr ON rr.movie_id = t.movie_id
	LEFT JOIN diary_rating dr ON dr.movie_id = t.movie_id
	ORDER BY m.movie_id
`

// ConsumptionRecords returns one record per movie the user diarized,
// watchlisted or reviewed.
func (s *SignalStore) ConsumptionRecords(ctx context.Context, userID int64) ([]recommend.ConsumptionRecord, error) {
	start := time.Now()
	records, err := s.consumptionRecords(ctx, userID)
	s.observe(recommend.FeedConsumption, "diary", start, err)
	return records, err
}

func (s *SignalStore) consumptionRecords(ctx context.Context, userID int64) ([]recommend.ConsumptionRecord, error) {
	ctx, cancel := s.db.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, consumptionQuery, userID, userID, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query consumption records: %w", err)
	}
	defer closeWithLog(rows, "consumption rows")

	records := make([]recommend.ConsumptionRecord, 0)
	for rows.Next() {
		var (
			rec      recommend.ConsumptionRecord
			genres   sql.NullString
			overview sql.NullString
			rating   sql.NullFloat64
		)
		if err := rows.Scan(&rec.ItemID, &rec.Title, &genres, &overview, &rating); err != nil {
			return nil, fmt.Errorf("scan consumption record: %w", err)
		}
		rec.GenreTags = recommend.ParseGenreTags(genres.String)
		rec.Text = overview.String
		if rating.Valid {
			r := rating.Float64
			rec.Rating = &r
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consumption records: %w", err)
	}
	return records, nil
}

const socialQuery = `
	SELECT DISTINCT r.movie_id
	FROM followers f
	JOIN reviews r ON r.user_id = f.following_id
	WHERE f.follower_id = ? AND r.rating >= ?
	ORDER BY r.movie_id
`

// SocialSignal returns movies that followed users reviewed at or above the
// store's minimum rating.
func (s *SignalStore) SocialSignal(ctx context.Context, userID int64) ([]int64, error) {
	start := time.Now()
	ids, err := s.queryIDs(ctx, socialQuery, userID, s.minRating)
	if err != nil {
		err = fmt.Errorf("query social signal: %w", err)
	}
	s.observe(recommend.FeedSocial, "reviews", start, err)
	return ids, err
}

const seenQuery = `
	SELECT movie_id FROM diary WHERE user_id = ?
	UNION
	SELECT movie_id FROM watchlist WHERE user_id = ?
	UNION
	SELECT movie_id FROM reviews WHERE user_id = ?
	ORDER BY movie_id
`

// SeenItems returns every movie the user diarized, watchlisted or reviewed.
func (s *SignalStore) SeenItems(ctx context.Context, userID int64) ([]int64, error) {
	start := time.Now()
	ids, err := s.queryIDs(ctx, seenQuery, userID, userID, userID)
	if err != nil {
		err = fmt.Errorf("query seen items: %w", err)
	}
	s.observe(recommend.FeedSeen, "diary", start, err)
	return ids, err
}

const catalogQuery = `
	SELECT
		movie_id,
		COALESCE(tmdb_id, 0),
		title,
		COALESCE(overview, ''),
		COALESCE(genres, ''),
		COALESCE(poster_path, '')
	FROM movies
	ORDER BY movie_id
`

// Catalog returns every movie ordered by movie_id.
func (s *SignalStore) Catalog(ctx context.Context) ([]recommend.CatalogItem, error) {
	start := time.Now()
	items, err := s.catalog(ctx)
	s.observe(recommend.FeedCatalog, "movies", start, err)
	return items, err
}

func (s *SignalStore) catalog(ctx context.Context) ([]recommend.CatalogItem, error) {
	ctx, cancel := s.db.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, catalogQuery)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer closeWithLog(rows, "catalog rows")

	items := make([]recommend.CatalogItem, 0)
	for rows.Next() {
		var item recommend.CatalogItem
		if err := rows.Scan(&item.ItemID, &item.ExternalID, &item.Title, &item.Text, &item.GenreText, &item.PosterReference); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		item.GenreTags = recommend.ParseGenreTags(item.GenreText)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return items, nil
}

const trendingQuery = `
	SELECT m.movie_id, m.title, COUNT(*) AS watch_count
	FROM followers f
	JOIN diary d ON f.following_id = d.user_id
	JOIN movies m ON d.movie_id = m.movie_id
	WHERE f.follower_id = ?
	GROUP BY m.movie_id, m.title
	ORDER BY watch_count DESC, m.movie_id
	LIMIT ?
`

// TrendingAmongFriends returns the titles most often diarized by users the
// requester follows.
func (s *SignalStore) TrendingAmongFriends(ctx context.Context, userID int64, limit int) ([]recommend.FriendTrend, error) {
	start := time.Now()
	trends, err := s.trending(ctx, userID, limit)
	s.observe(recommend.FeedTrending, "diary", start, err)
	return trends, err
}

func (s *SignalStore) trending(ctx context.Context, userID int64, limit int) ([]recommend.FriendTrend, error) {
	ctx, cancel := s.db.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, trendingQuery, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query friend trends: %w", err)
	}
	defer closeWithLog(rows, "trend rows")

	trends := make([]recommend.FriendTrend, 0, limit)
	for rows.Next() {
		var t recommend.FriendTrend
		if err := rows.Scan(&t.ItemID, &t.Title, &t.Count); err != nil {
			return nil, fmt.Errorf("scan friend trend: %w", err)
		}
		trends = append(trends, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friend trends: %w", err)
	}
	return trends, nil
}

// queryIDs runs a query returning a single BIGINT column.
func (s *SignalStore) queryIDs(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	ctx, cancel := s.db.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "id rows")

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SignalStore) observe(feed, table string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.RecordDBQuery("SELECT", table, elapsed, err)
	metrics.RecordSignalFetch(feed, elapsed, err)
}
