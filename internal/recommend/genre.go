// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package recommend

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
)

// genreDenylist holds structural tokens left behind by malformed encodings,
// e.g. a Python repr of [{'id': 28, 'name': 'Action'}] split as plain text.
var genreDenylist = map[string]struct{}{
	"id":   {},
	"name": {},
	"null": {},
}

// isGenreDelimiter reports separators for genre payloads stored as text.
// Whitespace is not a delimiter so that "Science Fiction" stays one tag.
func isGenreDelimiter(r rune) bool {
	switch r {
	case ',', '|', ';', '/', ':', '{', '}', '[', ']', '\'', '"', '(', ')':
		return true
	}
	return false
}

// ParseGenreTags decodes a stored genre payload into tags.
//
// Accepted forms are a JSON list of {"id","name"} objects, a JSON list of
// strings, a JSON string and delimited text. Anything else yields no tags.
// It never fails: malformed input is treated as empty.
func ParseGenreTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	// Any valid JSON document is decoded, so scalars such as true or 1e5
	// yield no tags instead of being split as text.
	if json.Valid([]byte(raw)) {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil
		}
		return GenreTagsFromValue(v)
	}

	return splitGenreText(raw)
}

// GenreTagsFromValue extracts tags from a decoded payload of unknown shape.
func GenreTagsFromValue(v any) []string {
	switch val := v.(type) {
	case string:
		return splitGenreText(val)
	case []string:
		return cleanTags(val)
	case []any:
		tags := make([]string, 0, len(val))
		for _, elem := range val {
			switch e := elem.(type) {
			case string:
				tags = append(tags, e)
			case map[string]any:
				if name, ok := e["name"].(string); ok {
					tags = append(tags, name)
				}
			}
		}
		return cleanTags(tags)
	case map[string]any:
		if name, ok := val["name"].(string); ok {
			return cleanTags([]string{name})
		}
	}
	return nil
}

func splitGenreText(s string) []string {
	return cleanTags(strings.FieldsFunc(s, isGenreDelimiter))
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, tag := range in {
		tag = strings.Join(strings.Fields(strings.ToValidUTF8(tag, "")), " ")
		if tag != "" {
			out = append(out, tag)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func joinTags(tags []string) string {
	return strings.Join(tags, " ")
}

// NormalizeGenreToken lowercases a tag and collapses whitespace.
// It returns "" for tokens that carry no genre signal.
func NormalizeGenreToken(tag string) string {
	token := strings.ToLower(strings.Join(strings.Fields(strings.ToValidUTF8(tag, "")), " "))
	if len([]rune(token)) <= 2 {
		return ""
	}
	if isNumeric(token) {
		return ""
	}
	if _, denied := genreDenylist[token]; denied {
		return ""
	}
	return token
}

// isNumeric reports tokens that are numbers, including exponent and NaN
// forms, or digit runs joined by signs and dots such as "12-15".
func isNumeric(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == '-' || r == '+':
		default:
			return false
		}
	}
	return digits > 0
}

// GenreTokens normalizes tags into a deduplicated token list in tag order.
func GenreTokens(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	tokens := make([]string, 0, len(tags))
	for _, tag := range tags {
		token := NormalizeGenreToken(tag)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}

// GenreAffinity is a user's weighted genre preference map.
type GenreAffinity struct {
	weights map[string]float64
	display map[string]string
	active  []GenreWeight
	rank    map[string]int
}

// BuildGenreAffinity folds records into an affinity map and keeps the top
// tokens by weight as the active set. Ties keep first-seen order.
// A record's weight is its rating clamped to [1,5], or implicitWeight when unrated.
func BuildGenreAffinity(records []ConsumptionRecord, topGenres int, implicitWeight float64) *GenreAffinity {
	a := &GenreAffinity{
		weights: make(map[string]float64),
		display: make(map[string]string),
		rank:    make(map[string]int),
	}

	var order []string
	for i := range records {
		w := recordWeight(records[i].Rating, implicitWeight)
		for _, tag := range records[i].GenreTags {
			token := NormalizeGenreToken(tag)
			if token == "" {
				continue
			}
			if _, ok := a.display[token]; !ok {
				a.display[token] = strings.Join(strings.Fields(tag), " ")
				order = append(order, token)
			}
		}
		for _, token := range GenreTokens(records[i].GenreTags) {
			a.weights[token] += w
		}
	}

	all := make([]GenreWeight, 0, len(order))
	for _, token := range order {
		all = append(all, GenreWeight{Token: token, Display: a.display[token], Weight: a.weights[token]})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Weight > all[j].Weight
	})

	if len(all) > topGenres {
		all = all[:topGenres]
	}
	a.active = all
	for i, gw := range all {
		a.rank[gw.Token] = i
	}
	return a
}

func recordWeight(rating *float64, implicitWeight float64) float64 {
	if rating == nil {
		return implicitWeight
	}
	r := *rating
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}

// Empty reports whether no valid genre token was extracted.
func (a *GenreAffinity) Empty() bool {
	return len(a.active) == 0
}

// Active returns the active set, strongest first.
func (a *GenreAffinity) Active() []GenreWeight {
	return append([]GenreWeight(nil), a.active...)
}

// Weight returns the accumulated weight of a token, active or not.
func (a *GenreAffinity) Weight(token string) float64 {
	return a.weights[token]
}

// IsActive reports whether token belongs to the active set.
func (a *GenreAffinity) IsActive(token string) bool {
	_, ok := a.rank[token]
	return ok
}

// Display returns the display spelling of a token.
func (a *GenreAffinity) Display(token string) string {
	if d, ok := a.display[token]; ok {
		return d
	}
	return token
}

// Score sums the active weights of the given item tokens.
func (a *GenreAffinity) Score(tokens []string) float64 {
	var score float64
	for _, token := range tokens {
		if i, ok := a.rank[token]; ok {
			score += a.active[i].Weight
		}
	}
	return score
}

// strongestFirst returns the item's active tokens ordered by affinity rank.
func (a *GenreAffinity) strongestFirst(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if a.IsActive(token) {
			out = append(out, token)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return a.rank[out[i]] < a.rank[out[j]]
	})
	return out
}
