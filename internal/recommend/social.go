// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package recommend

// SocialBoost applies a fixed multiplier to items endorsed by followed users.
type SocialBoost struct {
	items  map[int64]struct{}
	factor float64
}

// NewSocialBoost builds the boost set from endorsed item IDs.
func NewSocialBoost(itemIDs []int64, factor float64) *SocialBoost {
	items := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		items[id] = struct{}{}
	}
	return &SocialBoost{items: items, factor: factor}
}

// Endorsed reports whether a followed user rated the item highly.
func (s *SocialBoost) Endorsed(itemID int64) bool {
	_, ok := s.items[itemID]
	return ok
}

// Factor returns the boost for an item, 1.0 when not endorsed.
func (s *SocialBoost) Factor(itemID int64) float64 {
	if s.Endorsed(itemID) {
		return s.factor
	}
	return 1
}
