// Package rerank scores retrieved candidates with a blend of semantic and
// lexical similarity, independent of the vector index's native metric.
package rerank

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/futig/chatbot-backend/internal/entity"
)

var wordRe = regexp.MustCompile(`\w+`)

// Weights is the blend policy for the combined score.
type Weights struct {
	Semantic float64
	Lexical  float64
}

// DefaultWeights matches the tuned production values.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.7, Lexical: 0.3}
}

func (w Weights) Combine(semantic, lexical float64) float64 {
	return w.Semantic*semantic + w.Lexical*lexical
}

// Cosine computes cosine similarity between two vectors. Mismatched or
// zero-magnitude vectors score 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Jaccard computes word-set overlap between two texts:
// |intersection| / |union| over case-insensitive word tokens.
func Jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}

	return float64(inter) / float64(union)
}

// Rank orders candidates by combined score, descending. The sort is
// stable: ties keep the original index order.
func Rank(candidates []entity.Candidate) []entity.Candidate {
	out := make([]entity.Candidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Combined > out[j].Combined
	})
	return out
}

func wordSet(s string) map[string]struct{} {
	words := wordRe.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
