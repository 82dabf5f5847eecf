// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package recommend

import (
	"time"
)

// ConsumptionRecord is one item a user rated, diarized or watchlisted.
// Records are deduplicated by ItemID before scoring.
type ConsumptionRecord struct {
	// ItemID is the internal catalog identifier.
	ItemID int64 `json:"item_id"`

	// Title is the item title.
	Title string `json:"title"`

	// GenreTags are the decoded genre tags in source order.
	GenreTags []string `json:"genre_tags"`

	// Text is the item's description.
	Text string `json:"text"`

	// Rating is the explicit rating in [1,5], nil for implicit signals.
	Rating *float64 `json:"rating,omitempty"`
}

// CatalogItem is an item eligible for ranking.
type CatalogItem struct {
	// ItemID is the internal catalog identifier.
	ItemID int64 `json:"item_id"`

	// ExternalID is the identifier in the upstream catalog (TMDB id).
	ExternalID int64 `json:"external_id"`

	// Title is the item title.
	Title string `json:"title"`

	// GenreTags are the decoded genre tags in source order.
	GenreTags []string `json:"genre_tags"`

	// GenreText is the raw stored genre payload. It is appended to Text when
	// building the item's document; GenreTags are joined instead when empty.
	GenreText string `json:"genre_text,omitempty"`

	// Text is the item's description.
	Text string `json:"text"`

	// PosterReference is the upstream poster path, possibly empty.
	PosterReference string `json:"poster_reference,omitempty"`
}

// Document returns the text indexed for this item in the vector space.
//
//nolint:gocritic // value receiver keeps CatalogItem usable as a plain value
func (c CatalogItem) Document() string {
	genres := c.GenreText
	if genres == "" {
		genres = joinTags(c.GenreTags)
	}
	if genres == "" {
		return c.Text
	}
	return c.Text + " " + genres
}

// ScoreBreakdown records the components of a final score.
type ScoreBreakdown struct {
	// Genre is the sum of active affinity weights over the item's tokens.
	Genre float64 `json:"genre"`

	// Content is the cosine similarity against the user's text profile.
	Content float64 `json:"content"`

	// Social is the social boost factor (1.0 when not boosted).
	Social float64 `json:"social"`

	// Jitter is the freshness multiplier applied to all candidates.
	Jitter float64 `json:"jitter"`
}

// RankedResult is one entry of a ranking response.
type RankedResult struct {
	// ItemID is the internal catalog identifier.
	ItemID int64 `json:"item_id"`

	// ExternalID is the upstream catalog identifier.
	ExternalID int64 `json:"external_id"`

	// Title is the item title.
	Title string `json:"title"`

	// PosterReference is the upstream poster path, possibly empty.
	PosterReference string `json:"poster_reference,omitempty"`

	// FinalScore is the fused, boosted and jittered score.
	FinalScore float64 `json:"final_score"`

	// Confidence is FinalScore relative to the best result, in [0,100].
	Confidence float64 `json:"confidence"`

	// Reason is the human-readable justification.
	Reason string `json:"reason"`

	// Breakdown holds the per-signal components of FinalScore.
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// Request is a ranking request.
type Request struct {
	// UserID identifies the requesting user.
	UserID int64 `json:"user_id"`

	// TopN is the number of results. Zero uses the configured default.
	TopN int `json:"top_n"`

	// Seed overrides the time-bucket freshness seed when non-nil.
	Seed *int64 `json:"seed,omitempty"`

	// RequestID is used for tracing. Generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Empty result reasons reported in ResponseMetadata.EmptyReason.
const (
	EmptyNoHistory     = "no_history"
	EmptyNoGenreSignal = "no_genre_signal"
	EmptyNoCandidates  = "no_candidates"
)

// Response is the result of a ranking call.
type Response struct {
	// Items are the ranked results, best first. Never nil.
	Items []RankedResult `json:"items"`

	// Metadata describes how the ranking was produced.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes a ranking call.
type ResponseMetadata struct {
	// RequestID is the tracing identifier.
	RequestID string `json:"request_id"`

	// UserID is the requesting user.
	UserID int64 `json:"user_id"`

	// TopN is the effective result limit.
	TopN int `json:"top_n"`

	// Records is the number of distinct consumption records used.
	Records int `json:"records"`

	// Candidates is the number of unseen catalog items scored.
	Candidates int `json:"candidates"`

	// EmptyReason explains an empty result. Empty when Items is non-empty.
	EmptyReason string `json:"empty_reason,omitempty"`

	// ActiveGenres are the genre tokens that contributed to scoring.
	ActiveGenres []string `json:"active_genres,omitempty"`

	// HistoryStrength is min(records/10, 1). Informational only.
	HistoryStrength float64 `json:"history_strength"`

	// Seed is the freshness seed used.
	Seed int64 `json:"seed"`

	// CatalogChecksum identifies the vector space the content scores came from.
	CatalogChecksum string `json:"catalog_checksum,omitempty"`

	// SpaceSource is where the vector space came from: built, memory or snapshot.
	SpaceSource string `json:"space_source,omitempty"`

	// LatencyMS is the processing time in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// GenreWeight is one entry of a user's taste profile.
type GenreWeight struct {
	// Token is the normalized genre token.
	Token string `json:"token"`

	// Display is the first-seen spelling of the genre.
	Display string `json:"display"`

	// Weight is the accumulated consumption weight.
	Weight float64 `json:"weight"`
}

// Profile is a user's active genre affinity set.
type Profile struct {
	UserID  int64         `json:"user_id"`
	Records int           `json:"records"`
	Genres  []GenreWeight `json:"genres"`
}

// FriendTrend is a title frequently diarized by followed users.
type FriendTrend struct {
	ItemID int64  `json:"item_id"`
	Title  string `json:"title"`
	Count  int    `json:"count"`
}
