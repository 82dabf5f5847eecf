// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package recommend

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
)

// SparseVector is an L2-normalized term vector.
// Indices are strictly increasing vocabulary positions.
type SparseVector struct {
	Indices []int32   `json:"i"`
	Values  []float64 `json:"v"`
}

// Dot returns the inner product of two sparse vectors.
func (v SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Empty reports whether the vector has no non-zero terms.
func (v SparseVector) Empty() bool {
	return len(v.Indices) == 0
}

// VectorSpace is a TF-IDF space fitted over one catalog snapshot.
//
// Term weights are raw counts times a smoothed IDF,
// idf(t) = ln((1+n)/(1+df(t))) + 1, and every vector is L2-normalized, so
// cosine similarity reduces to a dot product.
type VectorSpace struct {
	// Checksum identifies the catalog documents the space was fitted on.
	Checksum string `json:"checksum"`

	// Vocabulary maps a term to its position. Positions follow term order.
	Vocabulary map[string]int32 `json:"vocabulary"`

	// IDF holds the inverse document frequency per position.
	IDF []float64 `json:"idf"`

	// ItemIDs and Items are aligned with the catalog iteration order.
	ItemIDs []int64        `json:"item_ids"`
	Items   []SparseVector `json:"items"`

	// BuiltAt is when the space was fitted.
	BuiltAt time.Time `json:"built_at"`
}

// CatalogChecksum hashes item identity and document text in iteration order.
// Two catalogs with the same checksum produce the same vector space.
func CatalogChecksum(catalog []CatalogItem) string {
	h := sha256.New()
	var buf [8]byte
	for i := range catalog {
		binary.BigEndian.PutUint64(buf[:], uint64(catalog[i].ItemID)) //nolint:gosec // bit pattern only
		h.Write(buf[:])
		doc := catalog[i].Document()
		binary.BigEndian.PutUint64(buf[:], uint64(len(doc)))
		h.Write(buf[:])
		h.Write([]byte(doc))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BuildVectorSpace fits a TF-IDF space over the catalog documents.
// The vocabulary keeps the maxFeatures terms with the highest corpus
// frequency; ties are broken alphabetically so the fit is deterministic.
func BuildVectorSpace(catalog []CatalogItem, maxFeatures int) *VectorSpace {
	docs := make([]map[string]int, len(catalog))
	corpusFreq := make(map[string]int)
	for i := range catalog {
		counts := termCounts(catalog[i].Document())
		docs[i] = counts
		for term, n := range counts {
			corpusFreq[term] += n
		}
	}

	terms := make([]string, 0, len(corpusFreq))
	for term := range corpusFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		fi, fj := corpusFreq[terms[i]], corpusFreq[terms[j]]
		if fi != fj {
			return fi > fj
		}
		return terms[i] < terms[j]
	})
	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	vocab := make(map[string]int32, len(terms))
	for i, term := range terms {
		vocab[term] = int32(i) //nolint:gosec // bounded by maxFeatures
	}

	df := make([]int, len(terms))
	for _, counts := range docs {
		for term := range counts {
			if idx, ok := vocab[term]; ok {
				df[idx]++
			}
		}
	}

	n := float64(len(catalog))
	idf := make([]float64, len(terms))
	for i := range idf {
		idf[i] = math.Log((1+n)/(1+float64(df[i]))) + 1
	}

	space := &VectorSpace{
		Checksum:   CatalogChecksum(catalog),
		Vocabulary: vocab,
		IDF:        idf,
		ItemIDs:    make([]int64, len(catalog)),
		Items:      make([]SparseVector, len(catalog)),
		BuiltAt:    time.Now(),
	}
	for i := range catalog {
		space.ItemIDs[i] = catalog[i].ItemID
		space.Items[i] = space.weigh(docs[i])
	}
	return space
}

// Transform projects free text into the space.
// Terms outside the vocabulary are ignored.
func (s *VectorSpace) Transform(text string) SparseVector {
	return s.weigh(termCounts(text))
}

// Similarities returns the cosine similarity of v against every item,
// aligned with ItemIDs. Values are clamped to [0,1].
func (s *VectorSpace) Similarities(v SparseVector) []float64 {
	out := make([]float64, len(s.Items))
	if v.Empty() {
		return out
	}
	for i := range s.Items {
		out[i] = clamp01(v.Dot(s.Items[i]))
	}
	return out
}

// Matches reports whether the space was fitted on exactly this catalog order.
func (s *VectorSpace) Matches(catalog []CatalogItem) bool {
	if len(s.ItemIDs) != len(catalog) || len(s.Items) != len(catalog) {
		return false
	}
	for i := range catalog {
		if s.ItemIDs[i] != catalog[i].ItemID {
			return false
		}
	}
	return true
}

func (s *VectorSpace) weigh(counts map[string]int) SparseVector {
	type entry struct {
		idx int32
		w   float64
	}
	entries := make([]entry, 0, len(counts))
	for term, n := range counts {
		if idx, ok := s.Vocabulary[term]; ok {
			entries = append(entries, entry{idx: idx, w: float64(n) * s.IDF[idx]})
		}
	}
	// Sum in index order so the norm is bit-identical run to run.
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
	var norm float64
	for _, e := range entries {
		norm += e.w * e.w
	}
	if len(entries) == 0 || norm == 0 {
		return SparseVector{}
	}

	norm = math.Sqrt(norm)
	v := SparseVector{
		Indices: make([]int32, len(entries)),
		Values:  make([]float64, len(entries)),
	}
	for i, e := range entries {
		v.Indices[i] = e.idx
		v.Values[i] = e.w / norm
	}
	return v
}

// termCounts tokenizes text into lowercase word terms of two or more
// characters and drops English stop words.
func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, term := range Tokenize(text) {
		counts[term]++
	}
	return counts
}

// Tokenize splits text into indexable terms.
// Letters, digits and underscores form words; everything else separates them.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	terms := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := englishStopWords[f]; stop {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
