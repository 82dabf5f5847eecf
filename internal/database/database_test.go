// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package database

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinemamaya/internal/config"
	"github.com/tomtom215/cinemamaya/internal/recommend"
)

// testDBSemaphore serializes DuckDB tests; concurrent CGO connections can hang under CI pressure.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory test database.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	cfg := &config.DatabaseConfig{
		Path:         ":memory:",
		MaxMemory:    "1GB",
		Threads:      1,
		QueryTimeout: 10 * time.Second,
	}
	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func rating(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 12, 0, 0, 0, time.UTC)
}

// testFixture: user 1 loves science fiction, follows user 2; user 3 is a stranger.
func testFixture() *Fixture {
	return &Fixture{
		Movies: []Movie{
			{MovieID: 1, TMDBID: 27205, Title: "Inception", Overview: "A thief steals secrets through dream sharing.",
				Genres: `[{"id": 878, "name": "Science Fiction"}, {"id": 28, "name": "Action"}]`, PosterPath: "/inception.jpg"},
			{MovieID: 2, TMDBID: 77, Title: "Memento", Overview: "A man with memory loss hunts a killer.",
				Genres: "Thriller, Mystery"},
			{MovieID: 3, TMDBID: 157336, Title: "Interstellar", Overview: "Explorers travel through a wormhole in space.",
				Genres: `["Science Fiction", "Drama"]`, PosterPath: "/interstellar.jpg"},
			{MovieID: 4, TMDBID: 194, Title: "Amélie", Overview: "A shy waitress changes lives in Paris.",
				Genres: "Comedy|Romance"},
			{MovieID: 5, TMDBID: 0, Title: "Untitled", Overview: "", Genres: "{{not json"},
		},
		Users: []User{
			{UserID: 1, Username: "maya"},
			{UserID: 2, Username: "ravi"},
			{UserID: 3, Username: "zoe"},
		},
		Reviews: []Review{
			{UserID: 1, MovieID: 1, Rating: rating(5), Text: "mind bending", CreatedAt: day(1)},
			{UserID: 1, MovieID: 2, Rating: rating(2), CreatedAt: day(2)},
			{UserID: 1, MovieID: 2, Rating: rating(3), CreatedAt: day(3)}, // latest review wins
			{UserID: 2, MovieID: 4, Rating: rating(5), CreatedAt: day(4)},
			{UserID: 2, MovieID: 5, Rating: rating(2), CreatedAt: day(4)},
			{UserID: 3, MovieID: 3, Rating: rating(5), CreatedAt: day(5)},
		},
		Diary: []DiaryEntry{
			{UserID: 1, MovieID: 1, Rating: rating(4), WatchedDate: day(1)},
			{UserID: 1, MovieID: 2, Rating: rating(4), WatchedDate: day(2)},
			{UserID: 2, MovieID: 3, WatchedDate: day(6)},
			{UserID: 2, MovieID: 3, WatchedDate: day(7)},
			{UserID: 2, MovieID: 4, WatchedDate: day(6)},
			{UserID: 3, MovieID: 5, WatchedDate: day(6)},
		},
		Watchlist: []WatchlistEntry{
			{UserID: 1, MovieID: 1, Priority: 1}, // duplicates a review
		},
		Followers: []Follow{
			{FollowerID: 1, FollowingID: 2},
		},
	}
}

func seededStore(t *testing.T) (*DB, *SignalStore) {
	t.Helper()
	db := setupTestDB(t)
	if _, err := db.Seed(context.Background(), testFixture()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return db, NewSignalStore(db, 4)
}

func TestNew_Schema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	for _, stmt := range tableStatements {
		var n int
		if err := db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+stmt.name).Scan(&n); err != nil {
			t.Errorf("table %s: %v", stmt.name, err)
		}
	}

	// Re-running the schema is a no-op
	if err := db.initialize(); err != nil {
		t.Errorf("initialize() twice error = %v", err)
	}
}

func TestSeed_Stats(t *testing.T) {
	db := setupTestDB(t)
	stats, err := db.Seed(context.Background(), testFixture())
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	want := SeedStats{Movies: 5, Users: 3, Reviews: 6, Diary: 6, Watchlist: 1, Followers: 1}
	if stats != want {
		t.Errorf("Seed() stats = %+v, want %+v", stats, want)
	}

	// Upserting the same movies and follows again does not fail
	if _, err := db.Seed(context.Background(), &Fixture{Movies: testFixture().Movies, Followers: testFixture().Followers}); err != nil {
		t.Errorf("second Seed() error = %v", err)
	}
}

func TestSeed_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	bad := &Fixture{
		Movies:    []Movie{{MovieID: 1, Title: "Kept only on success"}},
		Followers: []Follow{{FollowerID: 7, FollowingID: 7}},
	}
	if _, err := db.Seed(ctx, bad); err == nil {
		t.Fatal("Seed() should fail on a self follow")
	}

	var n int
	if err := db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n); err != nil {
		t.Fatalf("count movies: %v", err)
	}
	if n != 0 {
		t.Errorf("movies after rollback = %d, want 0", n)
	}
}

func TestInsertValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.InsertMovie(ctx, &Movie{MovieID: 1}); err == nil {
		t.Error("InsertMovie() without title should fail")
	}
	if err := db.Follow(ctx, 3, 3); err == nil {
		t.Error("Follow() of self should fail")
	}
	if err := db.InsertMovie(ctx, &Movie{MovieID: 1, Title: "Alien"}); err != nil {
		t.Errorf("InsertMovie() error = %v", err)
	}
	if err := db.InsertUser(ctx, &User{UserID: 1, Username: "a"}); err != nil {
		t.Errorf("InsertUser() error = %v", err)
	}
	if err := db.InsertReview(ctx, &Review{UserID: 1, MovieID: 1}); err != nil {
		t.Errorf("InsertReview() without rating error = %v", err)
	}
	if err := db.InsertDiary(ctx, &DiaryEntry{UserID: 1, MovieID: 1}); err != nil {
		t.Errorf("InsertDiary() error = %v", err)
	}
	if err := db.InsertWatchlist(ctx, &WatchlistEntry{UserID: 1, MovieID: 1, Priority: 2}); err != nil {
		t.Errorf("InsertWatchlist() error = %v", err)
	}
	if err := db.InsertWatchlist(ctx, &WatchlistEntry{UserID: 1, MovieID: 1, Priority: 5}); err != nil {
		t.Errorf("InsertWatchlist() reprioritize error = %v", err)
	}
}

func TestConsumptionRecords(t *testing.T) {
	_, store := seededStore(t)

	records, err := store.ConsumptionRecords(context.Background(), 1)
	if err != nil {
		t.Fatalf("ConsumptionRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (one per movie): %+v", len(records), records)
	}

	inception, memento := records[0], records[1]
	if inception.ItemID != 1 || inception.Title != "Inception" {
		t.Errorf("records[0] = %+v", inception)
	}
	if !reflect.DeepEqual(inception.GenreTags, []string{"Science Fiction", "Action"}) {
		t.Errorf("Inception tags = %v", inception.GenreTags)
	}
	if inception.Rating == nil || *inception.Rating != 5 {
		t.Errorf("Inception rating = %v, want review rating 5", inception.Rating)
	}
	if memento.Rating == nil || *memento.Rating != 3 {
		t.Errorf("Memento rating = %v, want latest review rating 3", memento.Rating)
	}
	if !strings.Contains(memento.Text, "memory loss") {
		t.Errorf("Memento text = %q", memento.Text)
	}
}

func TestConsumptionRecords_RatingFallbacks(t *testing.T) {
	db, store := seededStore(t)
	ctx := context.Background()

	// User 3 already reviewed movie 3 and diarized movie 5 without a rating
	if err := db.InsertWatchlist(ctx, &WatchlistEntry{UserID: 3, MovieID: 4}); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertDiary(ctx, &DiaryEntry{UserID: 3, MovieID: 1, Rating: rating(4.5), WatchedDate: day(9)}); err != nil {
		t.Fatal(err)
	}

	records, err := store.ConsumptionRecords(ctx, 3)
	if err != nil {
		t.Fatalf("ConsumptionRecords() error = %v", err)
	}
	got := make(map[int64]*float64, len(records))
	for _, r := range records {
		got[r.ItemID] = r.Rating
	}
	if len(got) != 4 {
		t.Fatalf("records = %+v, want movies 1, 3, 4, 5", records)
	}
	if got[1] == nil || *got[1] != 4.5 {
		t.Errorf("movie 1 rating = %v, want diary rating 4.5", got[1])
	}
	if got[3] == nil || *got[3] != 5 {
		t.Errorf("movie 3 rating = %v, want review rating 5", got[3])
	}
	if got[4] != nil {
		t.Errorf("watchlist-only movie rating = %v, want absent", *got[4])
	}
	if got[5] != nil {
		t.Errorf("unrated diary movie rating = %v, want absent", *got[5])
	}
}

func TestConsumptionRecords_NoHistory(t *testing.T) {
	_, store := seededStore(t)
	records, err := store.ConsumptionRecords(context.Background(), 999)
	if err != nil {
		t.Fatalf("ConsumptionRecords() error = %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %v, want empty non-nil slice", records)
	}
}

func TestSocialSignal(t *testing.T) {
	_, store := seededStore(t)
	ctx := context.Background()

	ids, err := store.SocialSignal(ctx, 1)
	if err != nil {
		t.Fatalf("SocialSignal() error = %v", err)
	}
	// User 2 rated movie 4 a 5 and movie 5 a 2; user 3 is not followed
	if !reflect.DeepEqual(ids, []int64{4}) {
		t.Errorf("SocialSignal(1) = %v, want [4]", ids)
	}

	lenient := NewSignalStore(store.db, 1)
	ids, err = lenient.SocialSignal(ctx, 1)
	if err != nil {
		t.Fatalf("SocialSignal() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{4, 5}) {
		t.Errorf("SocialSignal(1) with min 1 = %v, want [4 5]", ids)
	}

	ids, err = store.SocialSignal(ctx, 3)
	if err != nil || len(ids) != 0 {
		t.Errorf("SocialSignal(3) = %v, %v; want empty", ids, err)
	}
}

func TestCatalog(t *testing.T) {
	_, store := seededStore(t)

	items, err := store.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("got %d items, want 5", len(items))
	}
	for i, item := range items {
		if item.ItemID != int64(i+1) {
			t.Errorf("items[%d].ItemID = %d, want ordered by movie_id", i, item.ItemID)
		}
	}

	interstellar := items[2]
	if interstellar.ExternalID != 157336 || interstellar.PosterReference != "/interstellar.jpg" {
		t.Errorf("Interstellar = %+v", interstellar)
	}
	if interstellar.GenreText != `["Science Fiction", "Drama"]` {
		t.Errorf("GenreText = %q, want raw column", interstellar.GenreText)
	}
	if !reflect.DeepEqual(interstellar.GenreTags, []string{"Science Fiction", "Drama"}) {
		t.Errorf("GenreTags = %v", interstellar.GenreTags)
	}

	untitled := items[4]
	if untitled.ExternalID != 0 || untitled.PosterReference != "" || untitled.Text != "" {
		t.Errorf("NULL columns should scan as zero values: %+v", untitled)
	}
}

func TestSeenItems(t *testing.T) {
	_, store := seededStore(t)

	ids, err := store.SeenItems(context.Background(), 2)
	if err != nil {
		t.Fatalf("SeenItems() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{3, 4, 5}) {
		t.Errorf("SeenItems(2) = %v, want [3 4 5]", ids)
	}
}

func TestTrendingAmongFriends(t *testing.T) {
	_, store := seededStore(t)

	trends, err := store.TrendingAmongFriends(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("TrendingAmongFriends() error = %v", err)
	}
	want := []recommend.FriendTrend{
		{ItemID: 3, Title: "Interstellar", Count: 2},
		{ItemID: 4, Title: "Amélie", Count: 1},
	}
	if !reflect.DeepEqual(trends, want) {
		t.Errorf("TrendingAmongFriends() = %+v, want %+v", trends, want)
	}

	trends, err = store.TrendingAmongFriends(context.Background(), 1, 1)
	if err != nil || len(trends) != 1 {
		t.Errorf("limit 1 = %+v, %v", trends, err)
	}
}

func TestReadFixture(t *testing.T) {
	doc := `
movies:
  - movie_id: 10
    tmdb_id: 603
    title: The Matrix
    overview: A hacker learns reality is simulated.
    genres: '[{"id": 28, "name": "Action"}]'
users:
  - user_id: 1
    username: neo
reviews:
  - user_id: 1
    movie_id: 10
    rating: 4.5
    created_at: 2025-01-02T10:00:00Z
diary:
  - user_id: 1
    movie_id: 10
    watched_date: 2025-01-01T00:00:00Z
followers: []
`
	f, err := ReadFixture(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadFixture() error = %v", err)
	}
	if len(f.Movies) != 1 || f.Movies[0].Title != "The Matrix" {
		t.Errorf("Movies = %+v", f.Movies)
	}
	if f.Reviews[0].Rating == nil || *f.Reviews[0].Rating != 4.5 {
		t.Errorf("review rating = %v", f.Reviews[0].Rating)
	}
	if f.Diary[0].Rating != nil {
		t.Errorf("diary rating = %v, want nil", *f.Diary[0].Rating)
	}

	if _, err := ReadFixture(strings.NewReader("movies:\n  - movie_idd: 1\n")); err == nil {
		t.Error("ReadFixture() should reject unknown fields")
	}
	if f, err := ReadFixture(strings.NewReader("")); err != nil || len(f.Movies) != 0 {
		t.Errorf("empty fixture = %+v, %v", f, err)
	}
}

// TestEngineOverStore runs a ranking end to end on DuckDB.
func TestEngineOverStore(t *testing.T) {
	_, store := seededStore(t)

	seed := int64(0)
	engine, err := recommend.NewEngine(store, recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	resp, err := engine.Rank(context.Background(), recommend.Request{UserID: 1, Seed: &seed})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("got %d items, want the 3 unseen movies", len(resp.Items))
	}
	top := resp.Items[0]
	if top.ItemID != 3 || top.Reason != "Because you often enjoy Science Fiction films" {
		t.Errorf("top = %+v, want Interstellar explained by Science Fiction", top)
	}
	if top.Confidence != 100 {
		t.Errorf("top confidence = %v, want 100", top.Confidence)
	}

	var amelie *recommend.RankedResult
	for i := range resp.Items {
		if resp.Items[i].ItemID == 4 {
			amelie = &resp.Items[i]
		}
	}
	if amelie == nil || amelie.Breakdown.Social != 1.25 {
		t.Errorf("Amélie = %+v, want social boost from followed review", amelie)
	}
}
