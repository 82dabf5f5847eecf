// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package recommend

import (
	"fmt"
	"math"
)

// Reason strings that are not genre specific.
const (
	ReasonSocial   = "Loved by people you follow"
	ReasonFallback = "Based on your watch history & preferences"
)

// GenreReason formats the reason for an active affinity genre.
func GenreReason(display string) string {
	return fmt.Sprintf("Because you often enjoy %s films", display)
}

// explainer hands out each specific reason at most once per ranking.
// Items must be explained in score order.
type explainer struct {
	affinity   *GenreAffinity
	social     *SocialBoost
	usedGenres map[string]struct{}
	usedSocial bool
}

func newExplainer(affinity *GenreAffinity, social *SocialBoost) *explainer {
	return &explainer{
		affinity:   affinity,
		social:     social,
		usedGenres: make(map[string]struct{}),
	}
}

func (e *explainer) explain(itemID int64, tokens []string) string {
	for _, token := range e.affinity.strongestFirst(tokens) {
		if _, used := e.usedGenres[token]; used {
			continue
		}
		e.usedGenres[token] = struct{}{}
		return GenreReason(e.affinity.Display(token))
	}
	if !e.usedSocial && e.social.Endorsed(itemID) {
		e.usedSocial = true
		return ReasonSocial
	}
	return ReasonFallback
}

// NormalizeConfidence sets Confidence to FinalScore relative to the best
// score in items, as a percentage rounded to one decimal. A zero maximum
// yields zero confidences.
func NormalizeConfidence(items []RankedResult) {
	maxScore := 0.0
	for i := range items {
		if items[i].FinalScore > maxScore {
			maxScore = items[i].FinalScore
		}
	}
	if maxScore == 0 {
		maxScore = 1
	}
	for i := range items {
		c := math.Round(items[i].FinalScore/maxScore*1000) / 10
		items[i].Confidence = math.Max(0, math.Min(100, c))
	}
}
