// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package recommend

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Signals are the feeds of one ranking call.
type Signals struct {
	Records []ConsumptionRecord
	Social  []int64
	Catalog []CatalogItem
	Seen    []int64
}

// Ranking is the output of the pure ranking core.
type Ranking struct {
	// Items are the ranked results, best first. Never nil.
	Items []RankedResult

	// Records is the number of distinct consumption records.
	Records int

	// Candidates is the number of unseen catalog items scored.
	Candidates int

	// EmptyReason explains an empty ranking.
	EmptyReason string

	// ActiveGenres are the active affinity tokens, strongest first.
	ActiveGenres []string
}

// FreshnessSeed quantizes t into buckets of the given width.
func FreshnessSeed(t time.Time, width time.Duration) int64 {
	if width <= 0 {
		width = 45 * time.Second
	}
	n := t.UnixNano()
	w := width.Nanoseconds()
	seed := n / w
	if n%w < 0 {
		seed--
	}
	return seed
}

// JitterMultiplier selects the multiplier for a seed.
func JitterMultiplier(seed int64, multipliers []float64) float64 {
	if len(multipliers) == 0 {
		return 1
	}
	n := int64(len(multipliers))
	return multipliers[((seed%n)+n)%n]
}

// DedupeRecords keeps the first record per item.
func DedupeRecords(records []ConsumptionRecord) []ConsumptionRecord {
	seen := make(map[int64]struct{}, len(records))
	out := make([]ConsumptionRecord, 0, len(records))
	for i := range records {
		if _, dup := seen[records[i].ItemID]; dup {
			continue
		}
		seen[records[i].ItemID] = struct{}{}
		out = append(out, records[i])
	}
	return out
}

// UserText concatenates the descriptions of the user's records.
func UserText(records []ConsumptionRecord) string {
	parts := make([]string, 0, len(records))
	for i := range records {
		if t := strings.TrimSpace(records[i].Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Rank scores the catalog for one user and returns the top N.
//
// It is pure: every input is a parameter and nothing is retained. space may
// be nil, in which case it is fitted over sig.Catalog. A space fitted over a
// different catalog order is ignored and refitted.
func Rank(cfg *Config, sig Signals, space *VectorSpace, seed int64, topN int) Ranking {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if topN <= 0 {
		topN = cfg.Limits.DefaultTopN
	}

	records := DedupeRecords(sig.Records)
	out := Ranking{Items: []RankedResult{}, Records: len(records)}

	if len(records) == 0 || len(records) < cfg.Affinity.MinRecords {
		out.EmptyReason = EmptyNoHistory
		return out
	}

	affinity := BuildGenreAffinity(records, cfg.Affinity.TopGenres, cfg.Affinity.ImplicitWeight)
	if affinity.Empty() {
		out.EmptyReason = EmptyNoGenreSignal
		return out
	}
	for _, gw := range affinity.Active() {
		out.ActiveGenres = append(out.ActiveGenres, gw.Token)
	}

	seen := make(map[int64]struct{}, len(sig.Seen)+len(records))
	for _, id := range sig.Seen {
		seen[id] = struct{}{}
	}
	for i := range records {
		seen[records[i].ItemID] = struct{}{}
	}

	if space == nil || !space.Matches(sig.Catalog) {
		space = BuildVectorSpace(sig.Catalog, cfg.Text.MaxFeatures)
	}
	content := space.Similarities(space.Transform(UserText(records)))

	social := NewSocialBoost(sig.Social, cfg.Social.Boost)
	jitter := JitterMultiplier(seed, cfg.Jitter.Multipliers)

	candidates := make([]scored, 0, len(sig.Catalog))
	for i := range sig.Catalog {
		item := &sig.Catalog[i]
		if _, ok := seen[item.ItemID]; ok {
			continue
		}
		tokens := GenreTokens(item.GenreTags)
		b := ScoreBreakdown{
			Genre:   affinity.Score(tokens),
			Content: content[i],
			Social:  social.Factor(item.ItemID),
			Jitter:  jitter,
		}
		candidates = append(candidates, scored{
			item:      item,
			tokens:    tokens,
			breakdown: b,
			score:     FuseScore(cfg.Weights, b),
		})
	}
	out.Candidates = len(candidates)
	if len(candidates) == 0 {
		out.EmptyReason = EmptyNoCandidates
		return out
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	reasons := newExplainer(affinity, social)
	out.Items = make([]RankedResult, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		out.Items[i] = RankedResult{
			ItemID:          c.item.ItemID,
			ExternalID:      c.item.ExternalID,
			Title:           c.item.Title,
			PosterReference: c.item.PosterReference,
			FinalScore:      c.score,
			Reason:          reasons.explain(c.item.ItemID, c.tokens),
			Breakdown:       c.breakdown,
		}
	}
	NormalizeConfidence(out.Items)
	return out
}

type scored struct {
	item      *CatalogItem
	tokens    []string
	breakdown ScoreBreakdown
	score     float64
}

// FuseScore combines the signal components into the final score:
// (genre*W_genre + content*W_content) * social * jitter.
func FuseScore(w FusionWeights, b ScoreBreakdown) float64 {
	base := b.Genre*w.Genre + b.Content*w.Content
	score := base * b.Social * b.Jitter
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	return score
}

// HistoryStrength is min(records/10, 1).
func HistoryStrength(records int) float64 {
	return math.Min(float64(records)/10, 1)
}
