// Package similarity ranks stored chunk vectors against a query vector using
// exact brute-force cosine similarity.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch reports that a candidate vector cannot be compared
// against the query vector. Mixed dimensions within one bot usually mean the
// bot's content was embedded by different backends over time.
var ErrDimensionMismatch = errors.New("similarity: vector dimension mismatch")

// epsilon keeps the cosine denominator non-zero for all-zero vectors.
const epsilon = 1e-8

// Candidate is one stored chunk under consideration.
type Candidate struct {
	Text   string
	Vector []float32
}

// Match is a candidate selected by TopK, with its similarity score and its
// original position in the candidate slice.
type Match struct {
	Text  string
	Score float64
	Index int
}

// Cosine computes the cosine similarity dot(a,b) / (|a|*|b| + eps).
// Returns ErrDimensionMismatch if the vectors have different lengths.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + epsilon), nil
}

// TopK returns the k candidates most similar to query, highest score first.
// Ties keep the original candidate order, so identical inputs always produce
// identical output. k <= 0 yields an empty result; k beyond the candidate
// count returns every candidate ranked. Any candidate whose dimension
// disagrees with the query fails the whole call with ErrDimensionMismatch
// rather than contributing a silently wrong score.
func TopK(query []float32, candidates []Candidate, k int) ([]Match, error) {
	if k <= 0 || len(candidates) == 0 {
		return nil, nil
	}

	matches := make([]Match, len(candidates))
	for i, cand := range candidates {
		score, err := Cosine(query, cand.Vector)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		matches[i] = Match{Text: cand.Text, Score: score, Index: i}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}
