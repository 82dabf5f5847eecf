// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package api

import (
	"strings"

	"github.com/tomtom215/cinemamaya/internal/recommend"
)

// RecommendationItem is a ranked result with its resolved poster URL.
type RecommendationItem struct {
	recommend.RankedResult
	PosterURL string `json:"poster_url"`
}

// Recommendations is the data payload of the recommendations endpoint.
type Recommendations struct {
	Items    []RecommendationItem       `json:"items"`
	Metadata recommend.ResponseMetadata `json:"metadata"`
}

// PosterURL joins base and a poster path. An empty path yields "".
func PosterURL(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// NewRecommendations decorates a ranking response with poster URLs.
// Items is never nil.
func NewRecommendations(resp *recommend.Response, posterBase string) *Recommendations {
	items := make([]RecommendationItem, len(resp.Items))
	for i := range resp.Items {
		items[i] = RecommendationItem{
			RankedResult: resp.Items[i],
			PosterURL:    PosterURL(posterBase, resp.Items[i].PosterReference),
		}
	}
	return &Recommendations{Items: items, Metadata: resp.Metadata}
}
