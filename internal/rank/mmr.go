package rank

// DefaultMMRLambda is the default relevance/diversity trade-off weight.
// 1 selects on pure relevance, 0 on pure diversity.
const DefaultMMRLambda = 0.3

// MMR greedily selects up to k candidate positions balancing relevance to the
// query against redundancy with already-selected candidates. Candidates and
// query must be unit-normalized. The first pick is the most relevant
// candidate; each subsequent pick maximizes
//
//	lambda*relevance(i) - (1-lambda)*maxSim(i, selected)
//
// with ties won by the first candidate scanned. Returned values are positions
// into candidates, in selection order. k is clamped to the candidate count.
func MMR(candidates [][]float32, query []float32, k int, lambda float64) []int {
	n := len(candidates)
	if n == 0 || k <= 0 {
		return nil
	}
	if k > n {
		k = n
	}

	relevance := make([]float64, n)
	for i, c := range candidates {
		relevance[i] = Dot(c, query)
	}

	selected := make([]int, 0, k)
	remaining := make([]bool, n)
	for i := range remaining {
		remaining[i] = true
	}

	// Seed with the single most relevant candidate.
	best := 0
	for i := 1; i < n; i++ {
		if relevance[i] > relevance[best] {
			best = i
		}
	}
	selected = append(selected, best)
	remaining[best] = false

	for len(selected) < k {
		bestIdx := -1
		bestScore := 0.0
		for i := 0; i < n; i++ {
			if !remaining[i] {
				continue
			}
			redundancy := maxSimilarity(candidates[i], candidates, selected)
			score := lambda*relevance[i] - (1-lambda)*redundancy
			if bestIdx == -1 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}
		if bestIdx == -1 {
			break
		}
		selected = append(selected, bestIdx)
		remaining[bestIdx] = false
	}

	return selected
}

// maxSimilarity returns the highest cosine similarity between v and any
// already-selected candidate.
func maxSimilarity(v []float32, candidates [][]float32, selected []int) float64 {
	maxSim := -1.0
	for _, s := range selected {
		if sim := Dot(v, candidates[s]); sim > maxSim {
			maxSim = sim
		}
	}
	return maxSim
}
