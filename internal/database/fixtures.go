// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Movie is a catalog row. Genres is kept verbatim.
type Movie struct {
	MovieID    int64   `yaml:"movie_id"`
	TMDBID     int64   `yaml:"tmdb_id"`
	Title      string  `yaml:"title"`
	Overview   string  `yaml:"overview"`
	Genres     string  `yaml:"genres"`
	PosterPath string  `yaml:"poster_path"`
	Popularity float64 `yaml:"popularity"`
}

// User is an account row.
type User struct {
	UserID   int64  `yaml:"user_id"`
	Username string `yaml:"username"`
}

// Review is a rated review. A nil Rating stores NULL.
type Review struct {
	UserID    int64     `yaml:"user_id"`
	MovieID   int64     `yaml:"movie_id"`
	Rating    *float64  `yaml:"rating"`
	Text      string    `yaml:"text"`
	CreatedAt time.Time `yaml:"created_at"`
}

// DiaryEntry records a watch. A nil Rating stores NULL.
type DiaryEntry struct {
	UserID      int64     `yaml:"user_id"`
	MovieID     int64     `yaml:"movie_id"`
	Rating      *float64  `yaml:"rating"`
	WatchedDate time.Time `yaml:"watched_date"`
}

// WatchlistEntry records intent to watch.
type WatchlistEntry struct {
	UserID   int64 `yaml:"user_id"`
	MovieID  int64 `yaml:"movie_id"`
	Priority int   `yaml:"priority"`
}

// Follow is a directed follower edge.
type Follow struct {
	FollowerID  int64 `yaml:"follower_id"`
	FollowingID int64 `yaml:"following_id"`
}

// Fixture is a complete data set loadable with Seed.
type Fixture struct {
	Movies    []Movie          `yaml:"movies"`
	Users     []User           `yaml:"users"`
	Reviews   []Review         `yaml:"reviews"`
	Diary     []DiaryEntry     `yaml:"diary"`
	Watchlist []WatchlistEntry `yaml:"watchlist"`
	Followers []Follow         `yaml:"followers"`
}

// ReadFixture decodes a YAML fixture.
func ReadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// SeedStats counts the rows written by Seed.
type SeedStats struct {
	Movies    int `json:"movies"`
	Users     int `json:"users"`
	Reviews   int `json:"reviews"`
	Diary     int `json:"diary"`
	Watchlist int `json:"watchlist"`
	Followers int `json:"followers"`
}

// Seed writes a fixture in one transaction. Movies and users are upserted.
func (db *DB) Seed(ctx context.Context, f *Fixture) (SeedStats, error) {
	var stats SeedStats

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range f.Movies {
		if err := insertMovie(ctx, tx, &f.Movies[i]); err != nil {
			return stats, err
		}
		stats.Movies++
	}
	for i := range f.Users {
		if err := insertUser(ctx, tx, &f.Users[i]); err != nil {
			return stats, err
		}
		stats.Users++
	}
	for i := range f.Reviews {
		if err := insertReview(ctx, tx, &f.Reviews[i]); err != nil {
			return stats, err
		}
		stats.Reviews++
	}
	for i := range f.Diary {
		if err := insertDiary(ctx, tx, &f.Diary[i]); err != nil {
			return stats, err
		}
		stats.Diary++
	}
	for i := range f.Watchlist {
		if err := insertWatchlist(ctx, tx, &f.Watchlist[i]); err != nil {
			return stats, err
		}
		stats.Watchlist++
	}
	for i := range f.Followers {
		if err := insertFollow(ctx, tx, &f.Followers[i]); err != nil {
			return stats, err
		}
		stats.Followers++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit seed transaction: %w", err)
	}
	return stats, nil
}

// InsertMovie upserts a movie.
func (db *DB) InsertMovie(ctx context.Context, m *Movie) error {
	return insertMovie(ctx, db.conn, m)
}

// InsertUser upserts a user.
func (db *DB) InsertUser(ctx context.Context, u *User) error {
	return insertUser(ctx, db.conn, u)
}

// InsertReview appends a review.
func (db *DB) InsertReview(ctx context.Context, r *Review) error {
	return insertReview(ctx, db.conn, r)
}

// InsertDiary appends a diary entry.
func (db *DB) InsertDiary(ctx context.Context, d *DiaryEntry) error {
	return insertDiary(ctx, db.conn, d)
}

// InsertWatchlist adds or reprioritizes a watchlist entry.
func (db *DB) InsertWatchlist(ctx context.Context, w *WatchlistEntry) error {
	return insertWatchlist(ctx, db.conn, w)
}

// Follow records that followerID follows followingID.
func (db *DB) Follow(ctx context.Context, followerID, followingID int64) error {
	return insertFollow(ctx, db.conn, &Follow{FollowerID: followerID, FollowingID: followingID})
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertMovie(ctx context.Context, ex execer, m *Movie) error {
	if m.MovieID <= 0 || m.Title == "" {
		return fmt.Errorf("insert movie: movie_id and title are required")
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO movies (movie_id, tmdb_id, title, overview, genres, poster_path, popularity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (movie_id) DO UPDATE SET
			tmdb_id = excluded.tmdb_id,
			title = excluded.title,
			overview = excluded.overview,
			genres = excluded.genres,
			poster_path = excluded.poster_path,
			popularity = excluded.popularity`,
		m.MovieID, nullInt(m.TMDBID), m.Title, nullString(m.Overview), nullString(m.Genres),
		nullString(m.PosterPath), m.Popularity)
	if err != nil {
		return fmt.Errorf("insert movie %d: %w", m.MovieID, err)
	}
	return nil
}

func insertUser(ctx context.Context, ex execer, u *User) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO users (user_id, username) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET username = excluded.username`,
		u.UserID, u.Username)
	if err != nil {
		return fmt.Errorf("insert user %d: %w", u.UserID, err)
	}
	return nil
}

func insertReview(ctx context.Context, ex execer, r *Review) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO reviews (user_id, movie_id, rating, review_text, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.UserID, r.MovieID, nullFloat(r.Rating), nullString(r.Text), createdAt)
	if err != nil {
		return fmt.Errorf("insert review %d/%d: %w", r.UserID, r.MovieID, err)
	}
	return nil
}

func insertDiary(ctx context.Context, ex execer, d *DiaryEntry) error {
	watched := d.WatchedDate
	if watched.IsZero() {
		watched = time.Now().UTC()
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO diary (user_id, movie_id, rating, watched_date)
		VALUES (?, ?, ?, ?)`,
		d.UserID, d.MovieID, nullFloat(d.Rating), watched)
	if err != nil {
		return fmt.Errorf("insert diary %d/%d: %w", d.UserID, d.MovieID, err)
	}
	return nil
}

func insertWatchlist(ctx context.Context, ex execer, w *WatchlistEntry) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO watchlist (user_id, movie_id, priority) VALUES (?, ?, ?)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET priority = excluded.priority`,
		w.UserID, w.MovieID, w.Priority)
	if err != nil {
		return fmt.Errorf("insert watchlist %d/%d: %w", w.UserID, w.MovieID, err)
	}
	return nil
}

func insertFollow(ctx context.Context, ex execer, f *Follow) error {
	if f.FollowerID == f.FollowingID {
		return fmt.Errorf("insert follow: user %d cannot follow itself", f.FollowerID)
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO followers (follower_id, following_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING`,
		f.FollowerID, f.FollowingID)
	if err != nil {
		return fmt.Errorf("insert follow %d->%d: %w", f.FollowerID, f.FollowingID, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
