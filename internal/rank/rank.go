// Package rank implements cosine similarity ranking and Maximal Marginal
// Relevance selection over embedding vectors.
package rank

import (
	"math"
	"sort"
)

// normEpsilon guards unit normalization against zero vectors.
const normEpsilon = 1e-9

// NormalizeVector returns a unit-length copy of v.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum) + normEpsilon

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Normalize returns unit-length copies of all vectors.
func Normalize(vectors [][]float32) [][]float32 {
	out := make([][]float32, len(vectors))
	for i, v := range vectors {
		out[i] = NormalizeVector(v)
	}
	return out
}

// Dot computes the dot product of two vectors. For unit-normalized inputs
// this equals cosine similarity. Mismatched lengths score zero.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Rank returns all indices of vectors ordered by descending cosine similarity
// to query. Both sides are expected to be unit-normalized. Ties break toward
// the lower original index.
func Rank(vectors [][]float32, query []float32) []int {
	scores := make([]float64, len(vectors))
	for i, v := range vectors {
		scores[i] = Dot(v, query)
	}

	order := make([]int, len(vectors))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	return order
}
