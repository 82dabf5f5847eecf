// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package recommend

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func ratingPtr(r float64) *float64 { return &r }

func record(id int64, title string, genres []string, text string, rating float64) ConsumptionRecord {
	rec := ConsumptionRecord{ItemID: id, Title: title, GenreTags: genres, Text: text}
	if rating > 0 {
		rec.Rating = ratingPtr(rating)
	}
	return rec
}

func scenarioRecords() []ConsumptionRecord {
	return []ConsumptionRecord{
		record(1, "Inception", []string{"Sci-Fi", "Action"}, "A thief enters dreams to plant an idea in a target's mind.", 5),
		record(2, "Memento", []string{"Thriller"}, "A man with short-term memory loss hunts his wife's killer.", 4),
	}
}

func scenarioCatalog() []CatalogItem {
	return []CatalogItem{
		{ItemID: 1, ExternalID: 27205, Title: "Inception", GenreTags: []string{"Sci-Fi", "Action"}, Text: "A thief enters dreams to plant an idea in a target's mind."},
		{ItemID: 2, ExternalID: 77, Title: "Memento", GenreTags: []string{"Thriller"}, Text: "A man with short-term memory loss hunts his wife's killer."},
		{ItemID: 3, ExternalID: 157336, Title: "Interstellar", GenreTags: []string{"Sci-Fi", "Drama"}, Text: "Explorers travel through a wormhole to save humanity.", PosterReference: "/interstellar.jpg"},
		{ItemID: 4, ExternalID: 194, Title: "Amélie", GenreTags: []string{"Romance"}, Text: "A shy waitress in Paris decides to change the lives of others."},
	}
}

func seedPtr(s int64) *int64 { return &s }

func TestRank_Scenario(t *testing.T) {
	sig := Signals{
		Records: scenarioRecords(),
		Catalog: scenarioCatalog(),
	}
	got := Rank(DefaultConfig(), sig, nil, 0, 12)

	if len(got.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(got.Items))
	}
	if got.Items[0].Title != "Interstellar" || got.Items[1].Title != "Amélie" {
		t.Errorf("order = %q, %q; want Interstellar, Amélie", got.Items[0].Title, got.Items[1].Title)
	}
	if !strings.Contains(got.Items[0].Reason, "Sci-Fi") {
		t.Errorf("reason = %q, want mention of Sci-Fi", got.Items[0].Reason)
	}
	if got.Items[0].Confidence != 100 {
		t.Errorf("top confidence = %f, want 100", got.Items[0].Confidence)
	}
	if got.Items[0].Breakdown.Genre != 5 {
		t.Errorf("genre score = %f, want 5", got.Items[0].Breakdown.Genre)
	}
	if got.Items[0].PosterReference != "/interstellar.jpg" || got.Items[0].ExternalID != 157336 {
		t.Errorf("display fields not carried: %+v", got.Items[0])
	}
	if got.Candidates != 2 {
		t.Errorf("Candidates = %d, want 2", got.Candidates)
	}
}

func TestRank_EmptyReasons(t *testing.T) {
	tests := []struct {
		name    string
		records []ConsumptionRecord
		catalog []CatalogItem
		want    string
	}{
		{"no records", nil, scenarioCatalog(), EmptyNoHistory},
		{"one record", scenarioRecords()[:1], scenarioCatalog(), EmptyNoHistory},
		{
			"duplicate records count once",
			[]ConsumptionRecord{scenarioRecords()[0], scenarioRecords()[0]},
			scenarioCatalog(),
			EmptyNoHistory,
		},
		{
			"no valid genre tokens",
			[]ConsumptionRecord{
				record(1, "A", []string{"id", "28", "TV"}, "x", 5),
				record(2, "B", nil, "y", 0),
			},
			scenarioCatalog(),
			EmptyNoGenreSignal,
		},
		{"everything seen", scenarioRecords(), scenarioCatalog()[:2], EmptyNoCandidates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(DefaultConfig(), Signals{Records: tt.records, Catalog: tt.catalog}, nil, 0, 12)
			if len(got.Items) != 0 || got.Items == nil {
				t.Errorf("Items = %v, want empty non-nil", got.Items)
			}
			if got.EmptyReason != tt.want {
				t.Errorf("EmptyReason = %q, want %q", got.EmptyReason, tt.want)
			}
		})
	}
}

func TestRank_SocialBoost(t *testing.T) {
	records := []ConsumptionRecord{
		record(1, "Memories of Murder", []string{"Crime"}, "detectives hunt a serial killer in a rural town", 5),
		record(2, "Oldboy", []string{"Mystery"}, "a man imprisoned for years seeks revenge", 4),
	}
	catalog := []CatalogItem{
		{ItemID: 1, Title: "Memories of Murder", GenreTags: []string{"Crime"}, Text: "detectives hunt a serial killer in a rural town"},
		{ItemID: 2, Title: "Oldboy", GenreTags: []string{"Mystery"}, Text: "a man imprisoned for years seeks revenge"},
		{ItemID: 3, Title: "Parasite", GenreTags: []string{"Comedy"}, Text: "a poor family schemes to work for a wealthy family, revenge follows"},
		{ItemID: 4, Title: "Zodiac", GenreTags: []string{"Crime"}, Text: "a cartoonist becomes obsessed with a serial killer"},
	}

	plain := Rank(DefaultConfig(), Signals{Records: records, Catalog: catalog}, nil, 1, 12)
	boosted := Rank(DefaultConfig(), Signals{Records: records, Catalog: catalog, Social: []int64{3}}, nil, 1, 12)

	find := func(r Ranking, id int64) RankedResult {
		for _, item := range r.Items {
			if item.ItemID == id {
				return item
			}
		}
		t.Fatalf("item %d not ranked", id)
		return RankedResult{}
	}

	before := find(plain, 3)
	after := find(boosted, 3)
	if before.FinalScore == 0 {
		t.Fatal("Parasite should have a content score for this fixture")
	}
	if math.Abs(after.FinalScore-before.FinalScore*1.25) > 1e-12 {
		t.Errorf("boosted = %v, want 1.25 * %v", after.FinalScore, before.FinalScore)
	}
	if after.Reason != ReasonSocial {
		t.Errorf("reason = %q, want %q", after.Reason, ReasonSocial)
	}
	if before.Reason != ReasonFallback {
		t.Errorf("unboosted reason = %q, want %q", before.Reason, ReasonFallback)
	}
	if z := find(boosted, 4); z.Breakdown.Social != 1 {
		t.Errorf("unendorsed social factor = %f, want 1", z.Breakdown.Social)
	}
}

func TestRank_MalformedGenres(t *testing.T) {
	catalog := append(scenarioCatalog(),
		CatalogItem{ItemID: 9, Title: "Broken", GenreTags: GenreTagsFromValue(42), Text: "dreams and a thief"},
		CatalogItem{ItemID: 10, Title: "Garbage", GenreTags: ParseGenreTags(`[{"id": 878}, null, 7]`), Text: ""},
	)
	got := Rank(DefaultConfig(), Signals{Records: scenarioRecords(), Catalog: catalog}, nil, 0, 12)

	for _, item := range got.Items {
		if item.ItemID == 9 || item.ItemID == 10 {
			if item.Breakdown.Genre != 0 {
				t.Errorf("%s genre score = %f, want 0", item.Title, item.Breakdown.Genre)
			}
		}
	}
	if len(got.Items) != 4 {
		t.Errorf("len(Items) = %d, want 4", len(got.Items))
	}
}

// largeSignals builds a catalog with many near-tied items.
func largeSignals() Signals {
	genres := []string{"Sci-Fi", "Action", "Thriller", "Drama", "Crime", "Horror", "Comedy", "Western"}
	records := []ConsumptionRecord{
		record(1, "r1", []string{"Sci-Fi", "Action"}, "space battle across galaxies", 5),
		record(2, "r2", []string{"Thriller", "Crime"}, "a detective chases a killer", 4),
		record(3, "r3", []string{"Drama", "Horror"}, "haunted house family grief", 0),
		record(4, "r4", []string{"Comedy", "Western"}, "cowboys laugh at a saloon", 2),
	}
	catalog := make([]CatalogItem, 0, 60)
	for i := 0; i < 60; i++ {
		catalog = append(catalog, CatalogItem{
			ItemID:    int64(i + 1),
			Title:     fmt.Sprintf("movie-%d", i+1),
			GenreTags: []string{genres[i%len(genres)], genres[(i*3+1)%len(genres)]},
			Text:      fmt.Sprintf("story %d about %s and a detective in space", i, strings.ToLower(genres[i%len(genres)])),
		})
	}
	return Signals{Records: records, Catalog: catalog, Seen: []int64{5, 6, 7}, Social: []int64{10, 20}}
}

func TestRank_Properties(t *testing.T) {
	sig := largeSignals()
	seen := map[int64]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}

	for seed := int64(0); seed < 3; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			got := Rank(DefaultConfig(), sig, nil, seed, 20)
			if len(got.Items) != 20 {
				t.Fatalf("len(Items) = %d, want 20", len(got.Items))
			}

			genreReasons := make(map[string]bool)
			for i, item := range got.Items {
				if seen[item.ItemID] {
					t.Errorf("seen item %d recommended", item.ItemID)
				}
				if i > 0 && item.FinalScore > got.Items[i-1].FinalScore {
					t.Errorf("score increases at %d: %f > %f", i, item.FinalScore, got.Items[i-1].FinalScore)
				}
				if item.Confidence < 0 || item.Confidence > 100 {
					t.Errorf("confidence %f out of bounds", item.Confidence)
				}
				if strings.HasPrefix(item.Reason, "Because you often enjoy") {
					if genreReasons[item.Reason] {
						t.Errorf("genre reason %q repeated", item.Reason)
					}
					genreReasons[item.Reason] = true
				}
			}
			if got.Items[0].Confidence != 100 {
				t.Errorf("top confidence = %f, want 100", got.Items[0].Confidence)
			}
			if len(genreReasons) > len(got.ActiveGenres) {
				t.Errorf("%d genre reasons for %d active genres", len(genreReasons), len(got.ActiveGenres))
			}
		})
	}
}

func TestRank_TopN(t *testing.T) {
	sig := largeSignals()
	if got := Rank(DefaultConfig(), sig, nil, 0, 5); len(got.Items) != 5 {
		t.Errorf("len(Items) = %d, want 5", len(got.Items))
	}
	if got := Rank(DefaultConfig(), sig, nil, 0, 0); len(got.Items) != 12 {
		t.Errorf("default len(Items) = %d, want 12", len(got.Items))
	}
}

func TestRank_JitterIsUniform(t *testing.T) {
	sig := largeSignals()
	base := Rank(DefaultConfig(), sig, nil, 0, 20)
	shifted := Rank(DefaultConfig(), sig, nil, 2, 20)

	for i := range base.Items {
		if base.Items[i].ItemID != shifted.Items[i].ItemID {
			t.Fatalf("position %d differs: %d vs %d", i, base.Items[i].ItemID, shifted.Items[i].ItemID)
		}
		want := base.Items[i].FinalScore * 1.10
		if math.Abs(shifted.Items[i].FinalScore-want) > 1e-9 {
			t.Errorf("item %d score = %f, want %f", base.Items[i].ItemID, shifted.Items[i].FinalScore, want)
		}
	}
}

func TestRank_StableTies(t *testing.T) {
	records := scenarioRecords()
	catalog := []CatalogItem{
		{ItemID: 30, Title: "Tie A", GenreTags: []string{"Thriller"}},
		{ItemID: 10, Title: "Tie B", GenreTags: []string{"Thriller"}},
		{ItemID: 20, Title: "Tie C", GenreTags: []string{"Thriller"}},
	}
	got := Rank(DefaultConfig(), Signals{Records: records, Catalog: catalog}, nil, 0, 12)

	want := []int64{30, 10, 20}
	for i, id := range want {
		if got.Items[i].ItemID != id {
			t.Errorf("position %d = %d, want %d (catalog order)", i, got.Items[i].ItemID, id)
		}
	}
	if got.Items[1].Reason != ReasonFallback {
		t.Errorf("second tie reason = %q, want fallback", got.Items[1].Reason)
	}
}

func TestRank_MismatchedSpaceIsRefitted(t *testing.T) {
	sig := Signals{Records: scenarioRecords(), Catalog: scenarioCatalog()}
	stale := BuildVectorSpace(scenarioCatalog()[:2], 5000)

	withStale := Rank(DefaultConfig(), sig, stale, 0, 12)
	fresh := Rank(DefaultConfig(), sig, nil, 0, 12)
	for i := range fresh.Items {
		if withStale.Items[i].FinalScore != fresh.Items[i].FinalScore {
			t.Errorf("item %d: stale space score %f, fresh %f", i, withStale.Items[i].FinalScore, fresh.Items[i].FinalScore)
		}
	}
}

func TestFreshnessSeed(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want int64
	}{
		{"epoch", time.Unix(0, 0), 0},
		{"inside first bucket", time.Unix(44, 999), 0},
		{"second bucket", time.Unix(45, 0), 1},
		{"before epoch", time.Unix(-1, 0), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FreshnessSeed(tt.t, 45*time.Second); got != tt.want {
				t.Errorf("FreshnessSeed() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestJitterMultiplier(t *testing.T) {
	m := []float64{1.00, 1.05, 1.10}
	tests := []struct {
		seed int64
		want float64
	}{
		{0, 1.00}, {1, 1.05}, {2, 1.10}, {3, 1.00}, {-1, 1.10},
	}
	for _, tt := range tests {
		if got := JitterMultiplier(tt.seed, m); got != tt.want {
			t.Errorf("JitterMultiplier(%d) = %f, want %f", tt.seed, got, tt.want)
		}
	}
	if got := JitterMultiplier(5, nil); got != 1 {
		t.Errorf("JitterMultiplier with no multipliers = %f, want 1", got)
	}
}

func TestNormalizeConfidence(t *testing.T) {
	t.Run("relative to max", func(t *testing.T) {
		items := []RankedResult{{FinalScore: 8}, {FinalScore: 4}, {FinalScore: 1}}
		NormalizeConfidence(items)
		want := []float64{100, 50, 12.5}
		for i := range want {
			if items[i].Confidence != want[i] {
				t.Errorf("Confidence[%d] = %f, want %f", i, items[i].Confidence, want[i])
			}
		}
	})

	t.Run("rounds to one decimal", func(t *testing.T) {
		items := []RankedResult{{FinalScore: 3}, {FinalScore: 1}}
		NormalizeConfidence(items)
		if items[1].Confidence != 33.3 {
			t.Errorf("Confidence = %f, want 33.3", items[1].Confidence)
		}
	})

	t.Run("all zero", func(t *testing.T) {
		items := []RankedResult{{FinalScore: 0}, {FinalScore: 0}}
		NormalizeConfidence(items)
		for i := range items {
			if items[i].Confidence != 0 {
				t.Errorf("Confidence[%d] = %f, want 0", i, items[i].Confidence)
			}
		}
	})
}

func TestHistoryStrength(t *testing.T) {
	if got := HistoryStrength(3); got != 0.3 {
		t.Errorf("HistoryStrength(3) = %f, want 0.3", got)
	}
	if got := HistoryStrength(25); got != 1 {
		t.Errorf("HistoryStrength(25) = %f, want 1", got)
	}
}
