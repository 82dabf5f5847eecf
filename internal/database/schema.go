// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package database

import (
	"context"
	"fmt"
)

var tableStatements = []struct {
	name string
	ddl  string
}{
	{"movies", `
		CREATE TABLE IF NOT EXISTS movies (
			movie_id BIGINT PRIMARY KEY,
			tmdb_id BIGINT,
			title VARCHAR NOT NULL,
			overview VARCHAR,
			genres VARCHAR,
			poster_path VARCHAR,
			popularity DOUBLE DEFAULT 0
		)`},
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			username VARCHAR NOT NULL
		)`},
	{"reviews", `
		CREATE TABLE IF NOT EXISTS reviews (
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			rating DOUBLE,
			review_text VARCHAR,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"diary", `
		CREATE TABLE IF NOT EXISTS diary (
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			rating DOUBLE,
			watched_date DATE NOT NULL DEFAULT CURRENT_DATE
		)`},
	{"watchlist", `
		CREATE TABLE IF NOT EXISTS watchlist (
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, movie_id)
		)`},
	{"followers", `
		CREATE TABLE IF NOT EXISTS followers (
			follower_id BIGINT NOT NULL,
			following_id BIGINT NOT NULL,
			PRIMARY KEY (follower_id, following_id)
		)`},
}

var indexStatements = []string{
	"CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews(user_id)",
	"CREATE INDEX IF NOT EXISTS idx_diary_user ON diary(user_id)",
	"CREATE INDEX IF NOT EXISTS idx_followers_follower ON followers(follower_id)",
}

// createTables creates every table of the signal store
func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range tableStatements {
		if _, err := db.conn.ExecContext(ctx, stmt.ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", stmt.name, err)
		}
	}
	return nil
}

// createIndexes creates the per-user lookup indexes
func (db *DB) createIndexes(ctx context.Context) error {
	for _, stmt := range indexStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
